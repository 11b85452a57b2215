package dividend

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libdividend-go/budget"
	"github.com/bitfsorg/libdividend-go/events"
	"github.com/bitfsorg/libdividend-go/metrics"
	"github.com/bitfsorg/libdividend-go/pool"
)

func amounts(ns ...uint64) []*uint256.Int {
	out := make([]*uint256.Int, len(ns))
	for i, n := range ns {
		out[i] = u(n)
	}
	return out
}

func TestCustomDistribution_PaysEveryone(t *testing.T) {
	f := newFixture(t)
	f.mint(usdc, bob, 60)

	res, err := f.eng.DistributeDividendsCustom(bob, usdc,
		[]common.Address{alice, carol, admin}, amounts(10, 20, 30), u(60))
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 3, Total: 3}, res)

	assert.Equal(t, uint64(10), f.balance(usdc, alice))
	assert.Equal(t, uint64(20), f.balance(usdc, carol))
	assert.Equal(t, uint64(30), f.balance(usdc, admin))
	assert.Zero(t, f.balance(usdc, custody))
	assert.Zero(t, f.balance(usdc, bob))

	payouts := f.sink.Named("CustomPayout")
	require.Len(t, payouts, 3)
	assert.Equal(t, 2, payouts[2].(events.CustomPayout).Index)
	done := f.sink.Named("CustomDistributed")
	require.Len(t, done, 1)
	assert.Equal(t, 3, done[0].(events.CustomDistributed).Paid)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Payouts.WithLabelValues(metrics.KindCustom)))
}

func TestCustomDistribution_TinyBudget(t *testing.T) {
	f := newFixture(t)
	f.mint(usdc, bob, 60)

	res, err := f.eng.DistributeDividendsCustom(bob, usdc,
		[]common.Address{alice, carol, admin}, amounts(10, 20, 30), u(60),
		WithCallBudget(budget.Items(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.True(t, res.Truncated())

	assert.Equal(t, uint64(10), f.balance(usdc, alice))
	assert.Zero(t, f.balance(usdc, carol))
	assert.Zero(t, f.balance(usdc, admin))
	assert.Equal(t, uint64(50), f.balance(usdc, custody))

	require.Len(t, f.sink.Named("BatchTruncated"), 1)
	done := f.sink.Named("CustomDistributed")
	require.Len(t, done, 1)
	assert.Equal(t, 1, done[0].(events.CustomDistributed).Paid)
	assert.Equal(t, 3, done[0].(events.CustomDistributed).Requested)
}

func TestCustomDistribution_TotalAboveSumStaysInCustody(t *testing.T) {
	f := newFixture(t)
	f.mint(usdc, bob, 100)

	res, err := f.eng.DistributeDividendsCustom(bob, usdc, []common.Address{alice}, amounts(40), u(100))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, uint64(60), f.balance(usdc, custody))
}

func TestCustomDistribution_Validation(t *testing.T) {
	f := newFixture(t)
	f.mint(usdc, bob, 1000)

	tests := []struct {
		name    string
		users   []common.Address
		amounts []*uint256.Int
		total   *uint256.Int
		wantErr error
	}{
		{"empty users", nil, amounts(1), u(1), ErrEmptyList},
		{"empty amounts", []common.Address{alice}, nil, u(1), ErrEmptyList},
		{"length differs", []common.Address{alice, carol}, amounts(1), u(2), ErrListsLengthDiffers},
		{"zero amount", []common.Address{alice, carol}, amounts(1, 0), u(2), ErrInvalidAmount},
		{"nil amount", []common.Address{alice}, []*uint256.Int{nil}, u(2), ErrInvalidAmount},
		{"null recipient", []common.Address{alice, {}}, amounts(1, 1), u(2), ErrInvalidUserAddress},
		{"zero total", []common.Address{alice}, amounts(1), u(0), ErrInvalidAmount},
		{"exceeds total", []common.Address{alice, carol}, amounts(5, 6), u(10), ErrAmountsExceedTotal},
		{"overflowing sum", []common.Address{alice, carol},
			[]*uint256.Int{new(uint256.Int).SetAllOne(), u(1)}, u(10), ErrAmountsExceedTotal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.eng.DistributeDividendsCustom(bob, usdc, tt.users, tt.amounts, tt.total)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, res.Processed)
		})
	}
	assert.Equal(t, uint64(1000), f.balance(usdc, bob))
}

func TestInvalidAmountReportedByEngine(t *testing.T) {
	f := newFixture(t)
	f.mint(usdc, bob, 10)

	_, err := f.eng.DistributeDividendsCustom(bob, usdc, []common.Address{alice}, amounts(0), u(1))
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.NotErrorIs(t, err, pool.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "dividend: invalid amount")

	require.NoError(t, f.eng.CreatePool(tokenA))
	err = f.eng.LockTokens(alice, tokenA, u(0))
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.Contains(t, err.Error(), "dividend: invalid amount")
}

func TestCustomDistribution_PullFails(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.DistributeDividendsCustom(bob, usdc, []common.Address{alice}, amounts(1), u(1))
	assert.ErrorIs(t, err, ErrPullFailed)
}

func TestCustomDistribution_PayoutFailureStops(t *testing.T) {
	f := newFixture(t)
	f.mint(usdc, bob, 60)
	f.ledger.OnTransfer(func(_, to common.Address, _ *uint256.Int) error {
		if to == carol {
			return errors.New("refused")
		}
		return nil
	})

	res, err := f.eng.DistributeDividendsCustom(bob, usdc,
		[]common.Address{alice, carol, admin}, amounts(10, 20, 30), u(60))
	assert.ErrorIs(t, err, ErrPayoutFailed)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, uint64(10), f.balance(usdc, alice))
	assert.Zero(t, f.balance(usdc, admin))
	assert.Equal(t, uint64(50), f.balance(usdc, custody))
}
