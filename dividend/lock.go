package dividend

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/events"
	"github.com/bitfsorg/libdividend-go/metrics"
)

// UnlockResult reports the outcome of an unlock.
type UnlockResult struct {
	// Unlocked is false when the claim batch that precedes every unlock ran
	// out of budget. The lock is then unchanged and the caller re-invokes.
	Unlocked bool
	Amount   *uint256.Int // amount returned to the caller, when Unlocked
	Claimed  int          // distributions claimed by this call
	Pending  int          // distributions still unclaimed
}

// CreatePool allocates an empty pool for a.
func (e *Engine) CreatePool(a common.Address) error {
	exit, err := e.enter()
	if err != nil {
		return err
	}
	defer exit()

	e.mu.Lock()
	_, err = e.pools.Create(a)
	n := e.pools.Len()
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("dividend: create pool %s: %w", a.Hex(), err)
	}

	e.metrics.SetPools(n)
	e.emit(events.PoolCreated{Asset: a})
	e.logger.Info("pool created", zap.String("asset", a.Hex()))
	return nil
}

// LockTokens moves amount of a from caller into custody and adds it to the
// caller's lock. The change takes effect from the next distribution.
func (e *Engine) LockTokens(caller, a common.Address, amount *uint256.Int) error {
	exit, err := e.enter()
	if err != nil {
		return err
	}
	defer exit()
	return e.lock(caller, a, amount)
}

// LockAllTokens locks the caller's entire balance of a.
func (e *Engine) LockAllTokens(caller, a common.Address) (*uint256.Int, error) {
	exit, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer exit()

	bal, err := e.ledger.BalanceOf(a, caller)
	if err != nil {
		return nil, fmt.Errorf("dividend: balance of %s: %w", caller.Hex(), err)
	}
	if bal == nil || bal.IsZero() {
		return nil, fmt.Errorf("%w: %s holds no %s", ErrInvalidAmount, caller.Hex(), a.Hex())
	}
	if err := e.lock(caller, a, bal); err != nil {
		return nil, err
	}
	return bal.Clone(), nil
}

func (e *Engine) lock(caller, a common.Address, amount *uint256.Int) error {
	if caller == (common.Address{}) {
		return ErrInvalidUserAddress
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}

	e.mu.RLock()
	p, err := e.pools.Get(a)
	var overflow bool
	if err == nil {
		_, overflow = new(uint256.Int).AddOverflow(p.TotalLocked(), amount)
	}
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	if overflow {
		return fmt.Errorf("%w: total locked overflows", ErrInvalidAmount)
	}

	if err := e.pull(a, caller, amount); err != nil {
		return err
	}

	e.mu.Lock()
	seq := e.dists.NextSeq()
	err = p.Lock(caller, amount, seq)
	newLock := p.CurrentLock(caller)
	e.mu.Unlock()
	if err != nil {
		// Unreachable after the checks above; the pulled funds stay in custody.
		e.logger.Error("lock after pull failed",
			zap.String("asset", a.Hex()),
			zap.String("user", caller.Hex()),
			zap.Error(err),
		)
		return err
	}

	e.metrics.LockChanged(metrics.OpLock)
	e.emit(events.TokensLocked{Asset: a, User: caller, Amount: amount.Clone(), NewLock: newLock, Seq: seq})
	e.logger.Info("tokens locked",
		zap.String("asset", a.Hex()),
		zap.String("user", caller.Hex()),
		zap.String("amount", amount.Dec()),
		zap.Uint64("seq", seq),
	)
	return nil
}

// UnlockTokens returns amount of the caller's lock in a. Every distribution
// the caller took part in and has not claimed is claimed first. When the
// budget runs out before those claims finish, the unlock is deferred and
// reported through UnlockResult; claims made so far stay paid.
func (e *Engine) UnlockTokens(caller, a common.Address, amount *uint256.Int, opts ...CallOption) (UnlockResult, error) {
	exit, err := e.enter()
	if err != nil {
		return UnlockResult{}, err
	}
	defer exit()
	return e.unlock(caller, a, amount, opts)
}

// UnlockAllTokens unlocks the caller's entire lock in a.
func (e *Engine) UnlockAllTokens(caller, a common.Address, opts ...CallOption) (UnlockResult, error) {
	exit, err := e.enter()
	if err != nil {
		return UnlockResult{}, err
	}
	defer exit()

	e.mu.RLock()
	p, err := e.pools.Get(a)
	var current *uint256.Int
	if err == nil {
		current = p.CurrentLock(caller)
	}
	e.mu.RUnlock()
	if err != nil {
		return UnlockResult{}, err
	}
	if current.IsZero() {
		return UnlockResult{}, ErrUserDoesNotHaveLockedTokens
	}
	return e.unlock(caller, a, current, opts)
}

func (e *Engine) unlock(caller, a common.Address, amount *uint256.Int, opts []CallOption) (UnlockResult, error) {
	if caller == (common.Address{}) {
		return UnlockResult{}, ErrInvalidUserAddress
	}
	if amount == nil || amount.IsZero() {
		return UnlockResult{}, ErrInvalidAmount
	}

	e.mu.RLock()
	p, err := e.pools.Get(a)
	var pending []uint64
	if err == nil {
		current := p.CurrentLock(caller)
		switch {
		case current.IsZero():
			err = ErrUserDoesNotHaveLockedTokens
		case current.Lt(amount):
			err = fmt.Errorf("%w: locked %s, requested %s", ErrInsufficientLockedTokens, current.Dec(), amount.Dec())
		default:
			pending = e.participatedNotClaimed(caller, a)
		}
	}
	e.mu.RUnlock()
	if err != nil {
		return UnlockResult{}, err
	}

	res := UnlockResult{Pending: len(pending)}
	if len(pending) > 0 {
		claimed, truncated, err := e.claimBatch(caller, pending, "unlock", e.callMeter(opts))
		res.Claimed = claimed
		res.Pending = len(pending) - claimed
		if err != nil {
			return res, err
		}
		if truncated {
			e.logger.Info("unlock deferred",
				zap.String("asset", a.Hex()),
				zap.String("user", caller.Hex()),
				zap.Int("pending", res.Pending),
			)
			return res, nil
		}
	}

	if err := e.payout(a, caller, amount); err != nil {
		return res, err
	}

	e.mu.Lock()
	seq := e.dists.NextSeq()
	err = p.Unlock(caller, amount, seq)
	newLock := p.CurrentLock(caller)
	e.mu.Unlock()
	if err != nil {
		e.logger.Error("unlock after payout failed",
			zap.String("asset", a.Hex()),
			zap.String("user", caller.Hex()),
			zap.Error(err),
		)
		return res, err
	}

	res.Unlocked = true
	res.Amount = amount.Clone()
	e.metrics.LockChanged(metrics.OpUnlock)
	e.emit(events.TokensUnlocked{Asset: a, User: caller, Amount: amount.Clone(), NewLock: newLock, Seq: seq})
	e.logger.Info("tokens unlocked",
		zap.String("asset", a.Hex()),
		zap.String("user", caller.Hex()),
		zap.String("amount", amount.Dec()),
		zap.Uint64("seq", seq),
	)
	return res, nil
}
