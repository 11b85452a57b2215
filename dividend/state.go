package dividend

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/pool"
)

// State is a serialisable copy of the engine's pools and distributions.
type State struct {
	Pools         []pool.PoolState
	Distributions []distribution.Record
}

// Snapshot returns a copy of the engine state.
func (e *Engine) Snapshot() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &State{
		Pools:         e.pools.Export(),
		Distributions: e.dists.Export(),
	}
}

// Restore replaces the engine state with st. On error the engine is
// unchanged.
func (e *Engine) Restore(st *State) error {
	exit, err := e.enter()
	if err != nil {
		return err
	}
	defer exit()

	if st == nil {
		st = &State{}
	}
	pools, err := pool.ImportRegistry(st.Pools)
	if err != nil {
		return fmt.Errorf("dividend: restore: %w", err)
	}
	dists, err := distribution.ImportLedger(st.Distributions)
	if err != nil {
		return fmt.Errorf("dividend: restore: %w", err)
	}
	for _, p := range pools.Pools() {
		for _, u := range p.Participants() {
			if latest := p.History(u).Seqs(); len(latest) > 0 && latest[len(latest)-1] > dists.NextSeq() {
				return fmt.Errorf("dividend: restore: lock change of %s in %s at %d is past next distribution %d",
					u.Hex(), p.Asset().Hex(), latest[len(latest)-1], dists.NextSeq())
			}
		}
	}

	e.mu.Lock()
	e.pools = pools
	e.dists = dists
	n := pools.Len()
	e.mu.Unlock()

	e.metrics.SetPools(n)
	e.logger.Info("state restored",
		zap.Int("pools", n),
		zap.Uint64("distributions", dists.Counter()),
	)
	return nil
}
