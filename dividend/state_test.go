package dividend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libdividend-go/asset"
	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/pool"
)

func TestSnapshotRestore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	require.NoError(t, f.eng.CreatePool(tokenB))
	f.lock(alice, 100)
	f.distribute(1000, distribution.ModeWeighted)
	f.lock(bob, 300)
	f.distribute(400, distribution.ModeEqual)
	_, err := f.eng.ClaimDividends(alice, 1)
	require.NoError(t, err)

	st := f.eng.Snapshot()
	require.Len(t, st.Pools, 2)
	require.Len(t, st.Distributions, 2)

	restored, err := New(asset.NewMemLedger(custody), f.auth)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(st))

	assert.Equal(t, st, restored.Snapshot())
	assert.Equal(t, f.eng.ListPools(), restored.ListPools())
	assert.Equal(t, uint64(2), restored.DistributionCount())

	claimed, err := restored.HasClaimed(1, alice)
	require.NoError(t, err)
	assert.True(t, claimed)

	share, err := restored.GetMyShare(2, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), share.Uint64())

	lockAt, err := restored.LockAt(tokenA, alice, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), lockAt.Uint64())

	pending, err := restored.GetParticipatedNotClaimed(alice, tokenA)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, pending)
}

func TestRestore_RejectsLockChangesPastNextSeq(t *testing.T) {
	eng, err := New(asset.NewMemLedger(custody), asset.NewStaticAuthorizer())
	require.NoError(t, err)

	st := &State{Pools: []pool.PoolState{{
		Asset: tokenA,
		Users: []pool.UserState{{User: alice, Changes: []pool.ChangeRecord{{Seq: 5, Amount: "10"}}}},
	}}}
	assert.Error(t, eng.Restore(st))
	assert.Empty(t, eng.ListPools())
}

func TestRestore_Nil(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.CreatePool(tokenA))
	require.NoError(t, f.eng.Restore(nil))
	assert.Empty(t, f.eng.ListPools())
	assert.Zero(t, f.eng.DistributionCount())
}
