// Package session binds a data directory to a running dividend engine. A
// session holds the directory lock for its lifetime, loads the stored ledger
// on open and writes it back after every successful Update.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/asset"
	"github.com/bitfsorg/libdividend-go/config"
	"github.com/bitfsorg/libdividend-go/dividend"
	"github.com/bitfsorg/libdividend-go/events"
	"github.com/bitfsorg/libdividend-go/metrics"
	"github.com/bitfsorg/libdividend-go/store"
)

// LockFileName is the lock file created in the data directory.
const LockFileName = "divledger.lock"

var (
	// ErrLocked indicates another session holds the data directory.
	ErrLocked = errors.New("session: data directory is locked")

	// ErrCustodyMismatch indicates the stored ledger was created with a
	// different custody account than the one configured.
	ErrCustodyMismatch = errors.New("session: custody account does not match stored ledger")
)

// Session is an open data directory.
type Session struct {
	Config   config.Config
	Engine   *dividend.Engine
	Ledger   *asset.MemLedger
	Auth     *asset.StaticAuthorizer
	Registry *prometheus.Registry

	logger  *zap.Logger
	custody common.Address
	store   *store.BoltStore
	lock    *os.File
	events  *events.MemSink
	metrics *metrics.Collector
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logger *zap.Logger
	wait   bool
}

// WithLogger sets the logger passed to the engine.
func WithLogger(l *zap.Logger) Option {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWait makes Open block until the directory lock is free instead of
// failing with ErrLocked.
func WithWait() Option {
	return func(o *openOptions) { o.wait = true }
}

// Open validates cfg, locks its data directory and loads the stored ledger.
func Open(cfg config.Config, opts ...Option) (*Session, error) {
	o := openOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	custody, err := cfg.CustodyAddress()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("session: create data dir: %w", err)
	}

	lockPath := filepath.Join(cfg.DataDir, LockFileName)
	var fl *os.File
	if o.wait {
		fl, err = acquireLock(lockPath)
	} else {
		fl, err = tryLock(lockPath)
	}
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	st, err := store.OpenBoltStore(config.DBPath(cfg.DataDir))
	if err != nil {
		releaseLock(fl)
		return nil, fmt.Errorf("session: %w", err)
	}

	reg := prometheus.NewRegistry()
	s := &Session{
		Config:   cfg,
		Registry: reg,
		logger:   o.logger,
		custody:  custody,
		store:    st,
		lock:     fl,
		events:   events.NewMemSink(),
		metrics:  metrics.NewCollector(reg),
	}
	if err := s.load(); err != nil {
		_ = st.Close()
		releaseLock(fl)
		return nil, err
	}
	return s, nil
}

// load replaces the engine, ledger and authorizer with the stored ones.
func (s *Session) load() error {
	snap, err := s.store.Load()
	switch {
	case errors.Is(err, store.ErrStateNotFound):
		snap = store.Snapshot{}
	case err != nil:
		return fmt.Errorf("session: load: %w", err)
	}

	ledger := asset.NewMemLedger(s.custody)
	if snap.Ledger != nil {
		if snap.Ledger.Custody != s.custody {
			return fmt.Errorf("%w: stored %s, configured %s",
				ErrCustodyMismatch, snap.Ledger.Custody.Hex(), s.custody.Hex())
		}
		if ledger, err = asset.ImportMemLedger(snap.Ledger); err != nil {
			return fmt.Errorf("session: load ledger: %w", err)
		}
	}
	auth := asset.NewStaticAuthorizer(snap.Grants...)

	eng, err := dividend.New(ledger, auth,
		dividend.WithLogger(s.logger),
		dividend.WithSink(events.Multi(events.NewLogSink(s.logger), s.events)),
		dividend.WithMetrics(s.metrics),
		dividend.WithBudget(s.Config.Budget()),
	)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := eng.Restore(snap.State); err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}

	s.Engine, s.Ledger, s.Auth = eng, ledger, auth
	return nil
}

func (s *Session) save() error {
	snap := store.Snapshot{
		State:  s.Engine.Snapshot(),
		Ledger: s.Ledger.Export(),
		Grants: s.Auth.Grants(),
	}
	if err := s.store.Save(snap); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Update runs fn and saves the result whether or not fn fails. Engine calls
// leave no trace on failure except the committed prefix of a partial batch,
// and that prefix must survive.
func (s *Session) Update(fn func(*Session) error) error {
	s.events.Reset()
	err := fn(s)
	if serr := s.save(); serr != nil {
		return errors.Join(err, serr)
	}
	return err
}

// Events returns the events emitted during the last Update.
func (s *Session) Events() []events.Event { return s.events.Events() }

// Close closes the store and releases the directory lock.
func (s *Session) Close() error {
	err := s.store.Close()
	releaseLock(s.lock)
	s.lock = nil
	if err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	return nil
}
