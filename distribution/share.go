package distribution

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// LockHistory reconstructs a user's lock as it stood immediately before a
// distribution was created.
type LockHistory interface {
	LockAt(user common.Address, seq uint64) *uint256.Int
}

// CalculateShare returns user's entitlement in d, or zero when the user held
// no lock at d's sequence. Both modes truncate toward zero; whatever the
// truncation leaves behind stays undistributed.
//
//	equal:    total / snapshotLockerCount
//	weighted: total * lock / snapshotTotalLocked
func CalculateShare(d Distribution, h LockHistory, user common.Address) *uint256.Int {
	lock := h.LockAt(user, d.Sequence)
	if lock.IsZero() {
		return new(uint256.Int)
	}

	switch d.Mode {
	case ModeEqual:
		if d.SnapshotLockerCount == 0 {
			return new(uint256.Int)
		}
		return new(uint256.Int).Div(d.TotalAmount, uint256.NewInt(d.SnapshotLockerCount))
	case ModeWeighted:
		if d.SnapshotTotalLocked == nil || d.SnapshotTotalLocked.IsZero() {
			return new(uint256.Int)
		}
		// 512-bit intermediate product; only a lock above the snapshot total
		// could push the quotient past 256 bits.
		share, overflow := new(uint256.Int).MulDivOverflow(d.TotalAmount, lock, d.SnapshotTotalLocked)
		if overflow {
			return new(uint256.Int)
		}
		return share
	}
	return new(uint256.Int)
}

// Preview computes every listed user's share of d, skipping users with no
// entitlement, and returns the amount that truncation leaves undistributed.
func Preview(d Distribution, h LockHistory, users []common.Address) ([]Payout, *uint256.Int) {
	payouts := make([]Payout, 0, len(users))
	distributed := new(uint256.Int)
	for _, u := range users {
		share := CalculateShare(d, h, u)
		if share.IsZero() {
			continue
		}
		payouts = append(payouts, Payout{Address: u, Amount: share})
		distributed.Add(distributed, share)
	}

	remainder := new(uint256.Int)
	if distributed.Lt(d.TotalAmount) {
		remainder.Sub(d.TotalAmount, distributed)
	}
	return payouts, remainder
}
