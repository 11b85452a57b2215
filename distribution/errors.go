package distribution

import "errors"

var (
	// ErrInvalidAsset indicates the source asset is the null address.
	ErrInvalidAsset = errors.New("distribution: invalid asset")

	// ErrInvalidAmount indicates a nil or zero distribution amount.
	ErrInvalidAmount = errors.New("distribution: invalid amount")

	// ErrInvalidMode indicates a mode other than equal or weighted.
	ErrInvalidMode = errors.New("distribution: invalid mode")

	// ErrInvalidDistributionID indicates a sequence number below 1.
	ErrInvalidDistributionID = errors.New("distribution: invalid distribution id")

	// ErrDistributionNotStarted indicates no distribution exists at the sequence number yet.
	ErrDistributionNotStarted = errors.New("distribution: distribution not started")

	// ErrAlreadyClaimed indicates the user already claimed the distribution.
	ErrAlreadyClaimed = errors.New("distribution: already claimed")

	// ErrInvalidRecord indicates an exported distribution could not be restored.
	ErrInvalidRecord = errors.New("distribution: invalid record")
)
