package dividend

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/pool"
)

// GetPool returns the summary of the pool for a.
func (e *Engine) GetPool(a common.Address) (pool.Info, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pools.Info(a)
}

// ListPools returns every pool in creation order.
func (e *Engine) ListPools() []pool.Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pools.List()
}

// GetLockers returns the current lockers of a in address order.
func (e *Engine) GetLockers(a common.Address) ([]common.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, err := e.pools.Get(a)
	if err != nil {
		return nil, err
	}
	return p.Lockers(), nil
}

// IsLocker reports whether user currently holds a lock in a.
func (e *Engine) IsLocker(a, user common.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, err := e.pools.Get(a)
	if err != nil {
		return false, err
	}
	return p.IsLocker(user), nil
}

// GetCurrentLock returns user's current lock in a.
func (e *Engine) GetCurrentLock(a, user common.Address) (*uint256.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, err := e.pools.Get(a)
	if err != nil {
		return nil, err
	}
	return p.CurrentLock(user), nil
}

// LockAt returns user's lock in a as it stood immediately before
// distribution seq.
func (e *Engine) LockAt(a, user common.Address, seq uint64) (*uint256.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, err := e.pools.Get(a)
	if err != nil {
		return nil, err
	}
	return p.LockAt(user, seq), nil
}

// DistributionCount returns the sequence number of the latest distribution.
func (e *Engine) DistributionCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dists.Counter()
}

// GetDistribution returns distribution seq.
func (e *Engine) GetDistribution(seq uint64) (distribution.Distribution, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dists.Get(seq)
}

// GetDistributions returns the distributions started by admin, oldest first.
func (e *Engine) GetDistributions(admin common.Address) []distribution.Distribution {
	e.mu.RLock()
	defer e.mu.RUnlock()
	seqs := e.dists.ByInitiator(admin)
	out := make([]distribution.Distribution, 0, len(seqs))
	for _, seq := range seqs {
		if d, err := e.dists.Get(seq); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// HasClaimed reports whether user claimed distribution seq.
func (e *Engine) HasClaimed(seq uint64, user common.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dists.HasClaimed(seq, user)
}

// CheckStartedByAdmin reports whether admin started distribution seq.
func (e *Engine) CheckStartedByAdmin(seq uint64, admin common.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dists.StartedBy(seq, admin)
}

// GetMyShare returns user's entitlement in distribution seq, whether or not
// it has been claimed. Zero means no entitlement.
func (e *Engine) GetMyShare(seq uint64, user common.Address) (*uint256.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, err := e.dists.Get(seq)
	if err != nil {
		return nil, err
	}
	p, err := e.pools.Get(d.SourceAsset)
	if err != nil {
		return nil, err
	}
	return distribution.CalculateShare(d, p, user), nil
}

// GetParticipatedNotClaimed returns the distributions over a that user held
// a lock for and has yet to claim, in ascending order.
func (e *Engine) GetParticipatedNotClaimed(user, a common.Address) ([]uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.pools.Get(a); err != nil {
		return nil, err
	}
	return e.participatedNotClaimed(user, a), nil
}

// PreviewDistribution returns every entitled user's share of distribution
// seq and the amount rounding leaves undistributed.
func (e *Engine) PreviewDistribution(seq uint64) ([]distribution.Payout, *uint256.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, err := e.dists.Get(seq)
	if err != nil {
		return nil, nil, err
	}
	p, err := e.pools.Get(d.SourceAsset)
	if err != nil {
		return nil, nil, err
	}
	payouts, remainder := distribution.Preview(d, p, p.Participants())
	return payouts, remainder, nil
}
