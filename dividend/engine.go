// Package dividend is the dividend-distribution engine. It keeps pools of
// locked balances per asset, records distributions against those pools and
// pays each locker their share, either on demand or in budgeted batches.
//
// Every mutating call runs alone: a call made while another is in flight,
// including one made from inside a payout the engine initiated, fails with
// ErrReentrantCall. Queries may run at any time.
package dividend

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/asset"
	"github.com/bitfsorg/libdividend-go/budget"
	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/events"
	"github.com/bitfsorg/libdividend-go/metrics"
	"github.com/bitfsorg/libdividend-go/pool"
)

// Engine is the dividend ledger.
type Engine struct {
	busy atomic.Bool

	// mu guards pools and dists. It is released around calls into the asset
	// ledger so that payout hooks can still run queries.
	mu    sync.RWMutex
	pools *pool.Registry
	dists *distribution.Ledger

	ledger asset.Ledger
	auth   asset.Authorizer

	logger  *zap.Logger
	sink    events.Sink
	metrics *metrics.Collector
	budget  budget.Config
	now     func() time.Time
}

// New creates an empty engine over the given collaborators.
func New(ledger asset.Ledger, auth asset.Authorizer, opts ...Option) (*Engine, error) {
	if ledger == nil {
		return nil, fmt.Errorf("dividend: ledger is required")
	}
	if auth == nil {
		return nil, fmt.Errorf("dividend: authorizer is required")
	}
	e := &Engine{
		pools:  pool.NewRegistry(),
		dists:  distribution.NewLedger(),
		ledger: ledger,
		auth:   auth,
		logger: zap.NewNop(),
		sink:   events.Discard,
		budget: budget.DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.budget.Validate(); err != nil {
		return nil, fmt.Errorf("dividend: %w", err)
	}
	return e, nil
}

// enter raises the busy flag for a mutating call. The returned func lowers it.
func (e *Engine) enter() (func(), error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	return func() { e.busy.Store(false) }, nil
}

func (e *Engine) emit(ev events.Event) {
	e.sink.Emit(ev)
}

func (e *Engine) custody() common.Address {
	return e.ledger.Custody()
}

// pull moves amount of a from the caller into custody.
func (e *Engine) pull(a, from common.Address, amount *uint256.Int) error {
	if err := e.ledger.TransferFrom(a, from, e.custody(), amount); err != nil {
		return fmt.Errorf("%w: %s of %s from %s: %w", ErrPullFailed, amount.Dec(), a.Hex(), from.Hex(), err)
	}
	return nil
}

// payout moves amount of a from custody to to.
func (e *Engine) payout(a, to common.Address, amount *uint256.Int) error {
	if err := e.ledger.Transfer(a, to, amount); err != nil {
		return fmt.Errorf("%w: %s of %s to %s: %w", ErrPayoutFailed, amount.Dec(), a.Hex(), to.Hex(), err)
	}
	return nil
}
