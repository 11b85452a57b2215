package dividend

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libdividend-go/asset"
	"github.com/bitfsorg/libdividend-go/budget"
	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/events"
	"github.com/bitfsorg/libdividend-go/metrics"
)

var (
	custody = common.HexToAddress("0xc0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0")
	admin   = common.HexToAddress("0xad00000000000000000000000000000000000001")
	tokenA  = common.HexToAddress("0xa000000000000000000000000000000000000001")
	tokenB  = common.HexToAddress("0xa000000000000000000000000000000000000002")
	usdc    = common.HexToAddress("0xb000000000000000000000000000000000000001")
	alice   = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob     = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol   = common.HexToAddress("0x0000000000000000000000000000000000000ca1")
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func u(n uint64) *uint256.Int { return uint256.NewInt(n) }

type fixture struct {
	t       *testing.T
	ledger  *asset.MemLedger
	auth    *asset.StaticAuthorizer
	sink    *events.MemSink
	metrics *metrics.Collector
	eng     *Engine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		ledger:  asset.NewMemLedger(custody),
		auth:    asset.NewStaticAuthorizer(asset.Grant{Admin: admin, Asset: tokenA}),
		sink:    events.NewMemSink(),
		metrics: metrics.NewCollector(prometheus.NewRegistry()),
	}
	base := []Option{
		WithSink(f.sink),
		WithMetrics(f.metrics),
		WithClock(func() time.Time { return fixedNow }),
	}
	eng, err := New(f.ledger, f.auth, append(base, opts...)...)
	require.NoError(t, err)
	f.eng = eng
	return f
}

func (f *fixture) mint(a, to common.Address, n uint64) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.Mint(a, to, u(n)))
}

func (f *fixture) balance(a, acct common.Address) uint64 {
	f.t.Helper()
	b, err := f.ledger.BalanceOf(a, acct)
	require.NoError(f.t, err)
	return b.Uint64()
}

// lock mints n of tokenA to user and locks it.
func (f *fixture) lock(user common.Address, n uint64) {
	f.t.Helper()
	f.mint(tokenA, user, n)
	require.NoError(f.t, f.eng.LockTokens(user, tokenA, u(n)))
}

// distribute mints n of usdc to admin and distributes it over tokenA.
func (f *fixture) distribute(n uint64, mode distribution.Mode) distribution.Distribution {
	f.t.Helper()
	f.mint(usdc, admin, n)
	d, err := f.eng.DistributeDividends(admin, tokenA, usdc, u(n), mode)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) lockOf(user common.Address) uint64 {
	f.t.Helper()
	l, err := f.eng.GetCurrentLock(tokenA, user)
	require.NoError(f.t, err)
	return l.Uint64()
}

// --- construction ---

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, asset.NewStaticAuthorizer())
	assert.Error(t, err)
	_, err = New(asset.NewMemLedger(custody), nil)
	assert.Error(t, err)
}

func TestNew_RejectsInvalidBudget(t *testing.T) {
	cfg := budget.DefaultConfig()
	cfg.Numerator = 4
	_, err := New(asset.NewMemLedger(custody), asset.NewStaticAuthorizer(), WithBudget(cfg))
	assert.ErrorIs(t, err, budget.ErrInvalidFraction)
}

// --- pools ---

func TestCreatePool(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.eng.CreatePool(tokenA))
	info, err := f.eng.GetPool(tokenA)
	require.NoError(t, err)
	assert.Equal(t, tokenA, info.Asset)
	assert.Zero(t, info.LockerCount)
	assert.True(t, info.TotalLocked.IsZero())

	assert.ErrorIs(t, f.eng.CreatePool(tokenA), ErrPoolAlreadyExists)
	assert.ErrorIs(t, f.eng.CreatePool(common.Address{}), ErrInvalidAsset)

	require.Len(t, f.sink.Named("PoolCreated"), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Pools))
}

func TestMissingPool_IsAnErrorEverywhere(t *testing.T) {
	f := newFixture(t)
	f.mint(tokenB, alice, 10)

	_, err := f.eng.GetPool(tokenB)
	assert.ErrorIs(t, err, ErrPoolDoesNotExist)
	_, err = f.eng.GetLockers(tokenB)
	assert.ErrorIs(t, err, ErrPoolDoesNotExist)
	_, err = f.eng.IsLocker(tokenB, alice)
	assert.ErrorIs(t, err, ErrPoolDoesNotExist)
	_, err = f.eng.GetCurrentLock(tokenB, alice)
	assert.ErrorIs(t, err, ErrPoolDoesNotExist)
	_, err = f.eng.GetParticipatedNotClaimed(alice, tokenB)
	assert.ErrorIs(t, err, ErrPoolDoesNotExist)
	assert.ErrorIs(t, f.eng.LockTokens(alice, tokenB, u(10)), ErrPoolDoesNotExist)
	_, err = f.eng.UnlockTokens(alice, tokenB, u(10))
	assert.ErrorIs(t, err, ErrPoolDoesNotExist)

	// Nothing was pulled.
	assert.Equal(t, uint64(10), f.balance(tokenB, alice))
}

func TestListPools_CreationOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenB))
	require.NoError(t, f.eng.CreatePool(tokenA))

	pools := f.eng.ListPools()
	require.Len(t, pools, 2)
	assert.Equal(t, tokenB, pools[0].Asset)
	assert.Equal(t, tokenA, pools[1].Asset)
}

// --- locking ---

func TestLockTokens(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))

	f.lock(alice, 100)
	f.lock(alice, 50)
	f.lock(bob, 30)

	assert.Equal(t, uint64(150), f.lockOf(alice))
	assert.Equal(t, uint64(30), f.lockOf(bob))
	assert.Equal(t, uint64(180), f.balance(tokenA, custody))
	assert.Zero(t, f.balance(tokenA, alice))

	info, err := f.eng.GetPool(tokenA)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.LockerCount)
	assert.Equal(t, uint64(180), info.TotalLocked.Uint64())

	lockers, err := f.eng.GetLockers(tokenA)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice, bob}, lockers)

	locked := f.sink.Named("TokensLocked")
	require.Len(t, locked, 3)
	ev := locked[1].(events.TokensLocked)
	assert.Equal(t, uint64(50), ev.Amount.Uint64())
	assert.Equal(t, uint64(150), ev.NewLock.Uint64())
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.LockChanges.WithLabelValues(metrics.OpLock)))
}

func TestLockTokens_Validation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.mint(tokenA, alice, 10)

	assert.ErrorIs(t, f.eng.LockTokens(alice, tokenA, u(0)), ErrInvalidAmount)
	assert.ErrorIs(t, f.eng.LockTokens(alice, tokenA, nil), ErrInvalidAmount)
	assert.ErrorIs(t, f.eng.LockTokens(common.Address{}, tokenA, u(1)), ErrInvalidUserAddress)

	err := f.eng.LockTokens(alice, tokenA, u(11))
	assert.ErrorIs(t, err, ErrPullFailed)
	assert.ErrorIs(t, err, asset.ErrInsufficientBalance)
	assert.Zero(t, f.lockOf(alice))
	assert.Equal(t, uint64(10), f.balance(tokenA, alice))
}

func TestLockAllTokens(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.mint(tokenA, alice, 77)

	got, err := f.eng.LockAllTokens(alice, tokenA)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), got.Uint64())
	assert.Equal(t, uint64(77), f.lockOf(alice))

	_, err = f.eng.LockAllTokens(alice, tokenA)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLockUnlock_RoundTrip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.lock(alice, 100)

	res, err := f.eng.UnlockTokens(alice, tokenA, u(100))
	require.NoError(t, err)
	assert.True(t, res.Unlocked)
	assert.Equal(t, uint64(100), res.Amount.Uint64())
	assert.Zero(t, res.Claimed)

	assert.Zero(t, f.lockOf(alice))
	isLocker, err := f.eng.IsLocker(tokenA, alice)
	require.NoError(t, err)
	assert.False(t, isLocker)
	assert.Equal(t, uint64(100), f.balance(tokenA, alice))

	info, err := f.eng.GetPool(tokenA)
	require.NoError(t, err)
	assert.Zero(t, info.LockerCount)
	assert.True(t, info.TotalLocked.IsZero())
}

func TestUnlockTokens_Validation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.lock(alice, 100)

	_, err := f.eng.UnlockTokens(alice, tokenA, u(101))
	assert.ErrorIs(t, err, ErrInsufficientLockedTokens)
	_, err = f.eng.UnlockTokens(alice, tokenA, u(0))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = f.eng.UnlockTokens(bob, tokenA, u(1))
	assert.ErrorIs(t, err, ErrUserDoesNotHaveLockedTokens)
	_, err = f.eng.UnlockAllTokens(bob, tokenA)
	assert.ErrorIs(t, err, ErrUserDoesNotHaveLockedTokens)
	assert.Equal(t, uint64(100), f.lockOf(alice))
}

func TestUnlockAllTokens(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.lock(alice, 40)
	f.lock(bob, 60)
	f.distribute(1000, distribution.ModeWeighted)

	res, err := f.eng.UnlockAllTokens(alice, tokenA)
	require.NoError(t, err)
	assert.True(t, res.Unlocked)
	assert.Equal(t, uint64(40), res.Amount.Uint64())
	assert.Equal(t, 1, res.Claimed)
	assert.Equal(t, uint64(400), f.balance(usdc, alice))
	assert.Equal(t, uint64(40), f.balance(tokenA, alice))
	assert.Zero(t, f.lockOf(alice))
}

// --- distributing ---

func TestDistributeDividends(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.lock(alice, 300)
	f.lock(bob, 700)

	d := f.distribute(1000, distribution.ModeWeighted)
	assert.Equal(t, uint64(1), d.Sequence)
	assert.Equal(t, tokenA, d.SourceAsset)
	assert.Equal(t, usdc, d.PayoutAsset)
	assert.Equal(t, uint64(2), d.SnapshotLockerCount)
	assert.Equal(t, uint64(1000), d.SnapshotTotalLocked.Uint64())
	assert.Equal(t, admin, d.Initiator)
	assert.Equal(t, fixedNow, d.CreatedAt)

	assert.Equal(t, uint64(1000), f.balance(usdc, custody))
	assert.Zero(t, f.balance(usdc, admin))
	assert.Equal(t, uint64(1), f.eng.DistributionCount())

	got, err := f.eng.GetDistribution(1)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	evs := f.sink.Named("DividendsDistributed")
	require.Len(t, evs, 1)
	assert.Equal(t, "weighted", evs[0].(events.DividendsDistributed).Mode)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Distributions.WithLabelValues("weighted")))
}

func TestDistributeDividends_Validation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.mint(usdc, admin, 1000)
	f.mint(usdc, bob, 1000)

	tests := []struct {
		name    string
		caller  common.Address
		source  common.Address
		amount  *uint256.Int
		mode    distribution.Mode
		wantErr error
	}{
		{"not admin", bob, tokenA, u(10), distribution.ModeEqual, ErrNotProjectAdmin},
		{"null source", admin, common.Address{}, u(10), distribution.ModeEqual, ErrInvalidAsset},
		{"zero amount", admin, tokenA, u(0), distribution.ModeEqual, ErrInvalidAmount},
		{"bad mode", admin, tokenA, u(10), distribution.Mode(9), ErrInvalidMode},
		{"no pool", admin, tokenB, u(10), distribution.ModeEqual, ErrNotProjectAdmin},
		{"no lockers", admin, tokenA, u(10), distribution.ModeEqual, ErrNoLockers},
		{"null caller", common.Address{}, tokenA, u(10), distribution.ModeEqual, ErrInvalidUserAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.DistributeDividends(tt.caller, tt.source, usdc, tt.amount, tt.mode)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// No funds moved and no distribution recorded.
	assert.Equal(t, uint64(1000), f.balance(usdc, admin))
	assert.Equal(t, uint64(1000), f.balance(usdc, bob))
	assert.Zero(t, f.eng.DistributionCount())
}

func TestDistributeDividends_AdminOfMissingPool(t *testing.T) {
	f := newFixture(t)
	f.auth.Grant(admin, tokenB)
	f.mint(usdc, admin, 10)

	_, err := f.eng.DistributeDividends(admin, tokenB, usdc, u(10), distribution.ModeEqual)
	assert.ErrorIs(t, err, ErrPoolDoesNotExist)
}

func TestDistributeDividends_AuthorizerError(t *testing.T) {
	boom := errors.New("oracle down")
	auth := &asset.MockAuthorizer{IsProjectAdminFn: func(common.Address, common.Address) (bool, error) {
		return false, boom
	}}
	eng, err := New(asset.NewMemLedger(custody), auth)
	require.NoError(t, err)

	_, err = eng.DistributeDividends(admin, tokenA, usdc, u(10), distribution.ModeEqual)
	assert.ErrorIs(t, err, ErrAuthorization)
	assert.ErrorIs(t, err, boom)
}

func TestDistributeDividends_PullFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.lock(alice, 1)

	_, err := f.eng.DistributeDividends(admin, tokenA, usdc, u(10), distribution.ModeEqual)
	assert.ErrorIs(t, err, ErrPullFailed)
	assert.Zero(t, f.eng.DistributionCount())
}

func TestDistributeDividends_NativePayout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.lock(alice, 5)
	f.mint(asset.Native, admin, 90)

	d, err := f.eng.DistributeDividends(admin, tokenA, asset.Native, u(90), distribution.ModeEqual)
	require.NoError(t, err)

	paid, err := f.eng.ClaimDividends(alice, d.Sequence)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), paid.Uint64())
	assert.Equal(t, uint64(90), f.balance(asset.Native, alice))
}

func TestGetDistributions_ByAdmin(t *testing.T) {
	f := newFixture(t)
	f.auth.Grant(bob, tokenA)
	require.NoError(t, f.eng.CreatePool(tokenA))
	f.lock(alice, 1)

	f.distribute(10, distribution.ModeEqual)
	f.mint(usdc, bob, 20)
	_, err := f.eng.DistributeDividends(bob, tokenA, usdc, u(20), distribution.ModeEqual)
	require.NoError(t, err)
	f.distribute(30, distribution.ModeWeighted)

	mine := f.eng.GetDistributions(admin)
	require.Len(t, mine, 2)
	assert.Equal(t, uint64(1), mine[0].Sequence)
	assert.Equal(t, uint64(3), mine[1].Sequence)
	assert.Empty(t, f.eng.GetDistributions(carol))

	started, err := f.eng.CheckStartedByAdmin(2, bob)
	require.NoError(t, err)
	assert.True(t, started)
	started, err = f.eng.CheckStartedByAdmin(2, admin)
	require.NoError(t, err)
	assert.False(t, started)
	_, err = f.eng.CheckStartedByAdmin(4, admin)
	assert.ErrorIs(t, err, ErrDistributionHasNotStartedYet)
}
