package distribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Mode selects how a distribution is shared among lockers.
type Mode uint8

const (
	// ModeEqual pays every participating locker the same amount.
	ModeEqual Mode = iota + 1
	// ModeWeighted pays lockers in proportion to their lock.
	ModeWeighted
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeEqual:
		return "equal"
	case ModeWeighted:
		return "weighted"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeEqual || m == ModeWeighted }

// ParseMode parses "equal" or "weighted", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal":
		return ModeEqual, nil
	case "weighted":
		return ModeWeighted, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Params describes a distribution to create.
type Params struct {
	SourceAsset         common.Address // asset whose lockers are eligible
	PayoutAsset         common.Address // asset paid out; the zero address is the native asset
	TotalAmount         *uint256.Int
	Mode                Mode
	SnapshotLockerCount uint64
	SnapshotTotalLocked *uint256.Int
	Initiator           common.Address
	CreatedAt           time.Time
}

// Distribution is an immutable distribution event.
type Distribution struct {
	Sequence            uint64
	SourceAsset         common.Address
	PayoutAsset         common.Address
	TotalAmount         *uint256.Int
	Mode                Mode
	SnapshotLockerCount uint64
	SnapshotTotalLocked *uint256.Int
	Initiator           common.Address
	CreatedAt           time.Time
}

// clone returns a copy whose amounts do not alias d's.
func (d Distribution) clone() Distribution {
	d.TotalAmount = d.TotalAmount.Clone()
	d.SnapshotTotalLocked = d.SnapshotTotalLocked.Clone()
	return d
}

// Payout is one recipient's computed amount.
type Payout struct {
	Address common.Address
	Amount  *uint256.Int
}
