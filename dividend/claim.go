package dividend

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/budget"
	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/events"
)

// BatchResult reports how much of a batch was processed. Items past
// Processed were not attempted and may be resubmitted.
type BatchResult struct {
	Processed int
	Total     int
}

// Truncated reports whether the batch stopped before its last item.
func (r BatchResult) Truncated() bool { return r.Processed < r.Total }

// ClaimDividends pays the caller's share of distribution seq.
func (e *Engine) ClaimDividends(caller common.Address, seq uint64) (*uint256.Int, error) {
	exit, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer exit()

	if caller == (common.Address{}) {
		return nil, ErrInvalidUserAddress
	}
	e.mu.RLock()
	d, share, err := e.claimable(caller, seq)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if err := e.claim(caller, d, share); err != nil {
		return nil, err
	}
	return share, nil
}

// ClaimMultipleDividends claims seqs in the given order until the budget
// runs out. The whole list is checked before anything is paid; a payout
// failure stops the batch and the claims already paid stay paid.
func (e *Engine) ClaimMultipleDividends(caller common.Address, seqs []uint64, opts ...CallOption) (BatchResult, error) {
	exit, err := e.enter()
	if err != nil {
		return BatchResult{}, err
	}
	defer exit()

	res := BatchResult{Total: len(seqs)}
	if caller == (common.Address{}) {
		return res, ErrInvalidUserAddress
	}
	if len(seqs) == 0 {
		return res, ErrEmptyList
	}

	seen := make(map[uint64]struct{}, len(seqs))
	e.mu.RLock()
	for _, seq := range seqs {
		if _, dup := seen[seq]; dup {
			err = fmt.Errorf("%w: %d", ErrDuplicateDistributionID, seq)
			break
		}
		seen[seq] = struct{}{}
		if _, _, err = e.claimable(caller, seq); err != nil {
			break
		}
	}
	e.mu.RUnlock()
	if err != nil {
		return res, err
	}

	res.Processed, _, err = e.claimBatch(caller, seqs, "claim", e.callMeter(opts))
	return res, err
}

// claimable returns the distribution and the caller's share when caller may
// claim seq. Callers must hold e.mu.
func (e *Engine) claimable(user common.Address, seq uint64) (distribution.Distribution, *uint256.Int, error) {
	d, err := e.dists.Get(seq)
	if err != nil {
		return distribution.Distribution{}, nil, err
	}
	p, err := e.pools.Get(d.SourceAsset)
	if err != nil {
		return distribution.Distribution{}, nil, err
	}
	if !p.IsLocker(user) {
		return distribution.Distribution{}, nil, fmt.Errorf("%w: %s in %s", ErrUserDoesNotHaveLockedTokens, user.Hex(), d.SourceAsset.Hex())
	}
	share := distribution.CalculateShare(d, p, user)
	if share.IsZero() {
		return distribution.Distribution{}, nil, fmt.Errorf("%w: no share of distribution %d", ErrUserDoesNotHaveLockedTokens, seq)
	}
	claimed, err := e.dists.HasClaimed(seq, user)
	if err != nil {
		return distribution.Distribution{}, nil, err
	}
	if claimed {
		return distribution.Distribution{}, nil, fmt.Errorf("%w: distribution %d by %s", ErrAlreadyClaimed, seq, user.Hex())
	}
	return d, share, nil
}

// claim pays share of d to user and then marks it claimed. A failed payout
// leaves the claim open.
func (e *Engine) claim(user common.Address, d distribution.Distribution, share *uint256.Int) error {
	if err := e.payout(d.PayoutAsset, user, share); err != nil {
		return err
	}

	e.mu.Lock()
	err := e.dists.MarkClaimed(d.Sequence, user)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.metrics.ClaimPaid(d.Mode.String())
	e.emit(events.DividendClaimed{Seq: d.Sequence, User: user, PayoutAsset: d.PayoutAsset, Amount: share.Clone()})
	e.logger.Info("dividend claimed",
		zap.Uint64("seq", d.Sequence),
		zap.String("user", user.Hex()),
		zap.String("amount", share.Dec()),
	)
	return nil
}

// claimBatch claims seqs in order, stopping once m is exhausted. It returns
// the number claimed and whether the budget cut the batch short.
func (e *Engine) claimBatch(user common.Address, seqs []uint64, op string, m *budget.Meter) (int, bool, error) {
	for i, seq := range seqs {
		if m.Exhausted() {
			e.truncated(op, user, i, len(seqs), m)
			return i, true, nil
		}
		e.mu.RLock()
		d, share, err := e.claimable(user, seq)
		e.mu.RUnlock()
		if err != nil {
			return i, false, err
		}
		if err := e.claim(user, d, share); err != nil {
			return i, false, err
		}
		m.ChargeClaim()
	}
	return len(seqs), false, nil
}

func (e *Engine) truncated(op string, user common.Address, processed, requested int, m *budget.Meter) {
	e.metrics.Truncated(op)
	e.emit(events.BatchTruncated{Op: op, User: user, Processed: processed, Requested: requested, Used: m.Used()})
	e.logger.Warn("batch truncated by budget",
		zap.String("op", op),
		zap.String("user", user.Hex()),
		zap.Int("processed", processed),
		zap.Int("requested", requested),
		zap.Uint64("used", m.Used()),
	)
}

// participatedNotClaimed returns, in ascending order, the distributions over
// a in which user held a lock, is owed a non-zero share and has not claimed.
// Callers must hold e.mu.
func (e *Engine) participatedNotClaimed(user, a common.Address) []uint64 {
	p, err := e.pools.Get(a)
	if err != nil {
		return nil
	}
	var out []uint64
	for _, seq := range e.dists.BySource(a) {
		d, err := e.dists.Get(seq)
		if err != nil {
			continue
		}
		if p.LockAt(user, seq).IsZero() {
			continue
		}
		if distribution.CalculateShare(d, p, user).IsZero() {
			continue
		}
		if claimed, _ := e.dists.HasClaimed(seq, user); claimed {
			continue
		}
		out = append(out, seq)
	}
	return out
}
