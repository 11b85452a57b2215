package store

import "errors"

var (
	// ErrStateNotFound indicates the database holds no saved state yet.
	ErrStateNotFound = errors.New("store: state not found")

	// ErrCorrupt indicates a stored record could not be decoded.
	ErrCorrupt = errors.New("store: corrupt record")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")
)
