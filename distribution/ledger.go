// Package distribution records distribution events and computes each
// locker's share of them.
package distribution

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type record struct {
	dist    Distribution
	claimed map[common.Address]bool
}

// Ledger is the append-only sequence of distributions. Sequence numbers
// start at 1 and advance only on Create. A Ledger is not safe for concurrent
// use; callers serialize access.
type Ledger struct {
	records     []*record // records[i] has sequence i+1
	bySource    map[common.Address][]uint64
	byInitiator map[common.Address][]uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		bySource:    make(map[common.Address][]uint64),
		byInitiator: make(map[common.Address][]uint64),
	}
}

// Counter returns the sequence number of the latest distribution, 0 if none.
func (l *Ledger) Counter() uint64 { return uint64(len(l.records)) }

// NextSeq returns the sequence number the next distribution will receive.
// Lock changes made now take effect as of that distribution.
func (l *Ledger) NextSeq() uint64 { return l.Counter() + 1 }

// Create appends a distribution with an immutable snapshot and returns it.
func (l *Ledger) Create(p Params) (Distribution, error) {
	if p.SourceAsset == (common.Address{}) {
		return Distribution{}, ErrInvalidAsset
	}
	if p.TotalAmount == nil || p.TotalAmount.IsZero() {
		return Distribution{}, ErrInvalidAmount
	}
	if !p.Mode.Valid() {
		return Distribution{}, fmt.Errorf("%w: %s", ErrInvalidMode, p.Mode)
	}
	snapTotal := new(uint256.Int)
	if p.SnapshotTotalLocked != nil {
		snapTotal.Set(p.SnapshotTotalLocked)
	}

	d := Distribution{
		Sequence:            l.NextSeq(),
		SourceAsset:         p.SourceAsset,
		PayoutAsset:         p.PayoutAsset,
		TotalAmount:         p.TotalAmount.Clone(),
		Mode:                p.Mode,
		SnapshotLockerCount: p.SnapshotLockerCount,
		SnapshotTotalLocked: snapTotal,
		Initiator:           p.Initiator,
		CreatedAt:           p.CreatedAt,
	}
	l.append(&record{dist: d, claimed: make(map[common.Address]bool)})
	return d.clone(), nil
}

func (l *Ledger) append(r *record) {
	l.records = append(l.records, r)
	seq := r.dist.Sequence
	l.bySource[r.dist.SourceAsset] = append(l.bySource[r.dist.SourceAsset], seq)
	if r.dist.Initiator != (common.Address{}) {
		l.byInitiator[r.dist.Initiator] = append(l.byInitiator[r.dist.Initiator], seq)
	}
}

func (l *Ledger) lookup(seq uint64) (*record, error) {
	if seq < 1 {
		return nil, ErrInvalidDistributionID
	}
	if seq > l.Counter() {
		return nil, fmt.Errorf("%w: %d (latest %d)", ErrDistributionNotStarted, seq, l.Counter())
	}
	return l.records[seq-1], nil
}

// Get returns the distribution at seq.
func (l *Ledger) Get(seq uint64) (Distribution, error) {
	r, err := l.lookup(seq)
	if err != nil {
		return Distribution{}, err
	}
	return r.dist.clone(), nil
}

// MarkClaimed flips user's claimed flag for seq. The flag is write-once.
func (l *Ledger) MarkClaimed(seq uint64, user common.Address) error {
	r, err := l.lookup(seq)
	if err != nil {
		return err
	}
	if r.claimed[user] {
		return fmt.Errorf("%w: distribution %d by %s", ErrAlreadyClaimed, seq, user.Hex())
	}
	r.claimed[user] = true
	return nil
}

// HasClaimed reports whether user claimed seq.
func (l *Ledger) HasClaimed(seq uint64, user common.Address) (bool, error) {
	r, err := l.lookup(seq)
	if err != nil {
		return false, err
	}
	return r.claimed[user], nil
}

// BySource returns the ascending sequences of distributions over asset's lockers.
func (l *Ledger) BySource(asset common.Address) []uint64 {
	return copySeqs(l.bySource[asset])
}

// ByInitiator returns the ascending sequences of distributions started by admin.
func (l *Ledger) ByInitiator(admin common.Address) []uint64 {
	return copySeqs(l.byInitiator[admin])
}

// StartedBy reports whether admin started distribution seq.
func (l *Ledger) StartedBy(seq uint64, admin common.Address) (bool, error) {
	r, err := l.lookup(seq)
	if err != nil {
		return false, err
	}
	return r.dist.Initiator == admin, nil
}

func copySeqs(in []uint64) []uint64 {
	out := make([]uint64, len(in))
	copy(out, in)
	return out
}
