// Package store persists dividend engine state, asset balances and admin
// grants in a bbolt database.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libdividend-go/asset"
	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/dividend"
	"github.com/bitfsorg/libdividend-go/pool"
)

var (
	bucketPools         = []byte("pools")
	bucketDistributions = []byte("distributions")
	bucketMeta          = []byte("meta")
	bucketBalances      = []byte("balances")
	bucketAdmins        = []byte("admins")

	keyVersion  = []byte("version")
	keyCounter  = []byte("counter")
	keyCustody  = []byte("custody")
	keyLedger   = []byte("ledger_saved")
	keyGrants   = []byte("grants_saved")
	schemaValue = seqKey(1)
)

// BoltStore wraps a bbolt database holding one ledger's state.
type BoltStore struct {
	db *bbolt.DB
}

// Snapshot is everything a ledger process needs to resume.
type Snapshot struct {
	State  *dividend.State
	Ledger *asset.LedgerState
	Grants []asset.Grant
}

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPools, bucketDistributions, bucketMeta, bucketBalances, bucketAdmins} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return tx.Bucket(bucketMeta).Put(keyVersion, schemaValue)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

// seqKey encodes a sequence number as an 8-byte big-endian key for sorted storage.
func seqKey(n uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, n)
	return k
}

// pairKey concatenates two addresses into a 40-byte key.
func pairKey(a, b common.Address) []byte {
	k := make([]byte, 0, 2*common.AddressLength)
	k = append(k, a.Bytes()...)
	return append(k, b.Bytes()...)
}

func splitPairKey(k []byte) (common.Address, common.Address, error) {
	if len(k) != 2*common.AddressLength {
		return common.Address{}, common.Address{}, fmt.Errorf("%w: key length %d", ErrCorrupt, len(k))
	}
	return common.BytesToAddress(k[:common.AddressLength]), common.BytesToAddress(k[common.AddressLength:]), nil
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// resetBucket empties a bucket by recreating it.
func resetBucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
		return nil, fmt.Errorf("store: clear %s: %w", name, err)
	}
	b, err := tx.CreateBucket(name)
	if err != nil {
		return nil, fmt.Errorf("store: create %s: %w", name, err)
	}
	return b, nil
}

// Save writes a snapshot in one transaction. A nil State or Ledger leaves
// the stored one in place; Grants are always replaced.
func (s *BoltStore) Save(snap Snapshot) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if snap.State != nil {
			if err := putState(tx, snap.State); err != nil {
				return err
			}
		}
		if snap.Ledger != nil {
			if err := putLedger(tx, snap.Ledger); err != nil {
				return err
			}
		}
		return putGrants(tx, snap.Grants)
	})
}

// Load reads a full snapshot. Parts never saved are left nil. It returns
// ErrStateNotFound only when nothing at all has been saved.
func (s *BoltStore) Load() (Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		var found bool
		st, err := getState(tx)
		switch {
		case err == nil:
			snap.State, found = st, true
		case !errors.Is(err, ErrStateNotFound):
			return err
		}
		led, err := getLedger(tx)
		switch {
		case err == nil:
			snap.Ledger, found = led, true
		case !errors.Is(err, ErrStateNotFound):
			return err
		}
		grants, err := getGrants(tx)
		switch {
		case err == nil:
			snap.Grants, found = grants, true
		case !errors.Is(err, ErrStateNotFound):
			return err
		}
		if !found {
			return ErrStateNotFound
		}
		return nil
	})
	return snap, err
}

// SaveState replaces the stored engine state.
func (s *BoltStore) SaveState(st *dividend.State) error {
	if st == nil {
		return fmt.Errorf("%w: state", ErrNilParam)
	}
	return s.db.Update(func(tx *bbolt.Tx) error { return putState(tx, st) })
}

// LoadState reads the stored engine state.
func (s *BoltStore) LoadState() (*dividend.State, error) {
	var st *dividend.State
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		st, err = getState(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func putState(tx *bbolt.Tx, st *dividend.State) error {
	pb, err := resetBucket(tx, bucketPools)
	if err != nil {
		return err
	}
	// Keyed by position to keep creation order.
	for i, ps := range st.Pools {
		data, err := encodeGob(ps)
		if err != nil {
			return fmt.Errorf("store: encode pool %s: %w", ps.Asset.Hex(), err)
		}
		if err := pb.Put(seqKey(uint64(i)), data); err != nil {
			return fmt.Errorf("store: put pool %s: %w", ps.Asset.Hex(), err)
		}
	}

	distBucket, err := resetBucket(tx, bucketDistributions)
	if err != nil {
		return err
	}
	for _, rec := range st.Distributions {
		data, err := encodeGob(rec)
		if err != nil {
			return fmt.Errorf("store: encode distribution %d: %w", rec.Sequence, err)
		}
		if err := distBucket.Put(seqKey(rec.Sequence), data); err != nil {
			return fmt.Errorf("store: put distribution %d: %w", rec.Sequence, err)
		}
	}

	return tx.Bucket(bucketMeta).Put(keyCounter, seqKey(uint64(len(st.Distributions))))
}

func getState(tx *bbolt.Tx) (*dividend.State, error) {
	counter := tx.Bucket(bucketMeta).Get(keyCounter)
	if counter == nil {
		return nil, ErrStateNotFound
	}

	st := &dividend.State{}
	err := tx.Bucket(bucketPools).ForEach(func(k, v []byte) error {
		var ps pool.PoolState
		if err := decodeGob(v, &ps); err != nil {
			return fmt.Errorf("%w: pool %x: %w", ErrCorrupt, k, err)
		}
		st.Pools = append(st.Pools, ps)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = tx.Bucket(bucketDistributions).ForEach(func(k, v []byte) error {
		var rec distribution.Record
		if err := decodeGob(v, &rec); err != nil {
			return fmt.Errorf("%w: distribution %x: %w", ErrCorrupt, k, err)
		}
		st.Distributions = append(st.Distributions, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if want := binary.BigEndian.Uint64(counter); want != uint64(len(st.Distributions)) {
		return nil, fmt.Errorf("%w: counter %d, %d distributions", ErrCorrupt, want, len(st.Distributions))
	}
	return st, nil
}

// SaveLedger replaces the stored asset balances.
func (s *BoltStore) SaveLedger(state *asset.LedgerState) error {
	if state == nil {
		return fmt.Errorf("%w: ledger state", ErrNilParam)
	}
	return s.db.Update(func(tx *bbolt.Tx) error { return putLedger(tx, state) })
}

// LoadLedger reads the stored asset balances.
func (s *BoltStore) LoadLedger() (*asset.LedgerState, error) {
	var state *asset.LedgerState
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		state, err = getLedger(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func putLedger(tx *bbolt.Tx, state *asset.LedgerState) error {
	b, err := resetBucket(tx, bucketBalances)
	if err != nil {
		return err
	}
	for _, rec := range state.Balances {
		if err := b.Put(pairKey(rec.Asset, rec.Account), []byte(rec.Amount)); err != nil {
			return fmt.Errorf("store: put balance: %w", err)
		}
	}
	meta := tx.Bucket(bucketMeta)
	if err := meta.Put(keyCustody, state.Custody.Bytes()); err != nil {
		return fmt.Errorf("store: put custody: %w", err)
	}
	return meta.Put(keyLedger, []byte{1})
}

func getLedger(tx *bbolt.Tx) (*asset.LedgerState, error) {
	meta := tx.Bucket(bucketMeta)
	if meta.Get(keyLedger) == nil {
		return nil, ErrStateNotFound
	}
	custody := meta.Get(keyCustody)
	if len(custody) != common.AddressLength {
		return nil, fmt.Errorf("%w: custody address", ErrCorrupt)
	}

	state := &asset.LedgerState{Custody: common.BytesToAddress(custody)}
	err := tx.Bucket(bucketBalances).ForEach(func(k, v []byte) error {
		a, acct, err := splitPairKey(k)
		if err != nil {
			return err
		}
		state.Balances = append(state.Balances, asset.BalanceRecord{Asset: a, Account: acct, Amount: string(v)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// SaveGrants replaces the stored admin grants.
func (s *BoltStore) SaveGrants(grants []asset.Grant) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putGrants(tx, grants) })
}

// LoadGrants reads the stored admin grants in admin, then asset, order.
func (s *BoltStore) LoadGrants() ([]asset.Grant, error) {
	var grants []asset.Grant
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		grants, err = getGrants(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func putGrants(tx *bbolt.Tx, grants []asset.Grant) error {
	b, err := resetBucket(tx, bucketAdmins)
	if err != nil {
		return err
	}
	for _, g := range grants {
		if err := b.Put(pairKey(g.Admin, g.Asset), []byte{1}); err != nil {
			return fmt.Errorf("store: put grant: %w", err)
		}
	}
	return tx.Bucket(bucketMeta).Put(keyGrants, []byte{1})
}

func getGrants(tx *bbolt.Tx) ([]asset.Grant, error) {
	if tx.Bucket(bucketMeta).Get(keyGrants) == nil {
		return nil, ErrStateNotFound
	}
	grants := []asset.Grant{}
	err := tx.Bucket(bucketAdmins).ForEach(func(k, _ []byte) error {
		admin, a, err := splitPairKey(k)
		if err != nil {
			return err
		}
		grants = append(grants, asset.Grant{Admin: admin, Asset: a})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grants, nil
}
