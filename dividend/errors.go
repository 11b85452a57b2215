package dividend

import (
	"errors"

	"github.com/bitfsorg/libdividend-go/distribution"
	"github.com/bitfsorg/libdividend-go/pool"
)

// Errors shared with the pool and distribution packages, re-exported so
// callers can match every engine failure against this package.
var (
	ErrInvalidAsset                 = pool.ErrInvalidAsset
	ErrPoolAlreadyExists            = pool.ErrPoolAlreadyExists
	ErrPoolDoesNotExist             = pool.ErrPoolDoesNotExist
	ErrInsufficientLockedTokens     = pool.ErrInsufficientLock
	ErrInvalidMode                  = distribution.ErrInvalidMode
	ErrInvalidDistributionID        = distribution.ErrInvalidDistributionID
	ErrDistributionHasNotStartedYet = distribution.ErrDistributionNotStarted
	ErrAlreadyClaimed               = distribution.ErrAlreadyClaimed
)

var (
	// ErrInvalidAmount indicates a zero, missing or inconsistent amount.
	ErrInvalidAmount = errors.New("dividend: invalid amount")

	// ErrReentrantCall indicates a mutating call was made while another was in flight.
	ErrReentrantCall = errors.New("dividend: re-entrant call")

	// ErrNotProjectAdmin indicates the caller does not administer the source asset.
	ErrNotProjectAdmin = errors.New("dividend: caller is not project admin")

	// ErrNoLockers indicates a distribution against a pool nobody has locked into.
	ErrNoLockers = errors.New("dividend: pool has no lockers")

	// ErrUserDoesNotHaveLockedTokens indicates the user holds no lock, or no
	// entitlement in the distribution being claimed.
	ErrUserDoesNotHaveLockedTokens = errors.New("dividend: user does not have locked tokens")

	// ErrInvalidUserAddress indicates a null caller or recipient.
	ErrInvalidUserAddress = errors.New("dividend: invalid user address")

	// ErrEmptyList indicates an empty recipient, amount or sequence list.
	ErrEmptyList = errors.New("dividend: empty list")

	// ErrListsLengthDiffers indicates recipient and amount lists of different length.
	ErrListsLengthDiffers = errors.New("dividend: lists length differs")

	// ErrAmountsExceedTotal indicates custom amounts summing to more than the total pulled.
	ErrAmountsExceedTotal = errors.New("dividend: amounts exceed total")

	// ErrDuplicateDistributionID indicates a sequence listed twice in one claim batch.
	ErrDuplicateDistributionID = errors.New("dividend: duplicate distribution id")

	// ErrPayoutFailed wraps a failed transfer out of custody.
	ErrPayoutFailed = errors.New("dividend: payout failed")

	// ErrPullFailed wraps a failed transfer into custody.
	ErrPullFailed = errors.New("dividend: pull failed")

	// ErrAuthorization wraps a failed authorization query.
	ErrAuthorization = errors.New("dividend: authorization query failed")
)
