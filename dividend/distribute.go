package dividend

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/events"
)

// DistributeDividends pulls amount of payout from caller and records a
// distribution of it over the current lockers of source. The caller must
// administer source. Lockers claim their share afterwards.
func (e *Engine) DistributeDividends(caller, source, payout common.Address, amount *uint256.Int, mode distribution.Mode) (distribution.Distribution, error) {
	exit, err := e.enter()
	if err != nil {
		return distribution.Distribution{}, err
	}
	defer exit()

	if caller == (common.Address{}) {
		return distribution.Distribution{}, ErrInvalidUserAddress
	}
	if source == (common.Address{}) {
		return distribution.Distribution{}, ErrInvalidAsset
	}
	if amount == nil || amount.IsZero() {
		return distribution.Distribution{}, ErrInvalidAmount
	}
	if !mode.Valid() {
		return distribution.Distribution{}, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}

	ok, err := e.auth.IsProjectAdmin(caller, source)
	if err != nil {
		return distribution.Distribution{}, fmt.Errorf("%w: %w", ErrAuthorization, err)
	}
	if !ok {
		return distribution.Distribution{}, fmt.Errorf("%w: %s for %s", ErrNotProjectAdmin, caller.Hex(), source.Hex())
	}

	e.mu.RLock()
	p, err := e.pools.Get(source)
	if err == nil && p.LockerCount() == 0 {
		err = fmt.Errorf("%w: %s", ErrNoLockers, source.Hex())
	}
	e.mu.RUnlock()
	if err != nil {
		return distribution.Distribution{}, err
	}

	if err := e.pull(payout, caller, amount); err != nil {
		return distribution.Distribution{}, err
	}

	e.mu.Lock()
	d, err := e.dists.Create(distribution.Params{
		SourceAsset:         source,
		PayoutAsset:         payout,
		TotalAmount:         amount,
		Mode:                mode,
		SnapshotLockerCount: p.LockerCount(),
		SnapshotTotalLocked: p.TotalLocked(),
		Initiator:           caller,
		CreatedAt:           e.now(),
	})
	e.mu.Unlock()
	if err != nil {
		// Return the pulled funds; nothing was recorded.
		if rerr := e.payout(payout, caller, amount); rerr != nil {
			return distribution.Distribution{}, fmt.Errorf("%w (refund: %w)", err, rerr)
		}
		return distribution.Distribution{}, err
	}

	e.metrics.DistributionCreated(mode.String())
	e.emit(events.DividendsDistributed{
		Seq:         d.Sequence,
		Initiator:   caller,
		SourceAsset: source,
		PayoutAsset: payout,
		Amount:      amount.Clone(),
		Mode:        mode.String(),
	})
	e.logger.Info("dividends distributed",
		zap.Uint64("seq", d.Sequence),
		zap.String("source", source.Hex()),
		zap.String("payout", payout.Hex()),
		zap.String("amount", amount.Dec()),
		zap.Stringer("mode", mode),
		zap.Uint64("lockers", d.SnapshotLockerCount),
	)
	return d, nil
}

// DistributeDividendsCustom pulls total of payout from caller and pays
// amounts[i] to users[i] in order until the budget runs out. Nothing is
// recorded; whatever was not paid stays in custody. A payout failure stops
// the batch.
func (e *Engine) DistributeDividendsCustom(caller, payout common.Address, users []common.Address, amounts []*uint256.Int, total *uint256.Int, opts ...CallOption) (BatchResult, error) {
	exit, err := e.enter()
	if err != nil {
		return BatchResult{}, err
	}
	defer exit()

	res := BatchResult{Total: len(users)}
	if caller == (common.Address{}) {
		return res, ErrInvalidUserAddress
	}
	if len(users) == 0 || len(amounts) == 0 {
		return res, ErrEmptyList
	}
	if len(users) != len(amounts) {
		return res, fmt.Errorf("%w: %d users, %d amounts", ErrListsLengthDiffers, len(users), len(amounts))
	}
	if total == nil || total.IsZero() {
		return res, ErrInvalidAmount
	}
	sum := new(uint256.Int)
	for i := range users {
		if amounts[i] == nil || amounts[i].IsZero() {
			return res, fmt.Errorf("%w: amount %d", ErrInvalidAmount, i)
		}
		if users[i] == (common.Address{}) {
			return res, fmt.Errorf("%w: recipient %d", ErrInvalidUserAddress, i)
		}
		var overflow bool
		if sum, overflow = sum.AddOverflow(sum, amounts[i]); overflow {
			return res, ErrAmountsExceedTotal
		}
	}
	if sum.Gt(total) {
		return res, fmt.Errorf("%w: %s > %s", ErrAmountsExceedTotal, sum.Dec(), total.Dec())
	}

	if err := e.pull(payout, caller, total); err != nil {
		return res, err
	}

	m := e.callMeter(opts)
	for i, u := range users {
		if m.Exhausted() {
			e.truncated("custom", caller, i, len(users), m)
			break
		}
		if err := e.payout(payout, u, amounts[i]); err != nil {
			e.logger.Warn("custom payout failed",
				zap.String("user", u.Hex()),
				zap.Int("index", i),
				zap.Error(err),
			)
			return res, err
		}
		m.ChargePayout()
		res.Processed++
		e.metrics.CustomPaid()
		e.emit(events.CustomPayout{Initiator: caller, PayoutAsset: payout, User: u, Amount: amounts[i].Clone(), Index: i})
	}

	e.emit(events.CustomDistributed{
		Initiator:   caller,
		PayoutAsset: payout,
		TotalAmount: total.Clone(),
		Paid:        res.Processed,
		Requested:   res.Total,
	})
	e.logger.Info("custom distribution",
		zap.String("payout", payout.Hex()),
		zap.String("total", total.Dec()),
		zap.Int("paid", res.Processed),
		zap.Int("requested", res.Total),
	)
	return res, nil
}
