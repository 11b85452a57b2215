package pool

import "errors"

var (
	// ErrInvalidAsset indicates the asset identity is the null address.
	ErrInvalidAsset = errors.New("pool: invalid asset")

	// ErrPoolAlreadyExists indicates a pool for the asset was already created.
	ErrPoolAlreadyExists = errors.New("pool: pool already exists")

	// ErrPoolDoesNotExist indicates no pool has been created for the asset.
	ErrPoolDoesNotExist = errors.New("pool: pool does not exist")

	// ErrInvalidAmount indicates a nil or zero lock amount.
	ErrInvalidAmount = errors.New("pool: invalid amount")

	// ErrInvalidUser indicates the user is the null address.
	ErrInvalidUser = errors.New("pool: invalid user address")

	// ErrInsufficientLock indicates an unlock larger than the user's current lock.
	ErrInsufficientLock = errors.New("pool: insufficient locked tokens")

	// ErrSequenceRegression indicates a lock change recorded at a sequence
	// lower than the user's latest recorded change.
	ErrSequenceRegression = errors.New("pool: lock change sequence went backwards")
)
