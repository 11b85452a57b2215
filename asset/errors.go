package asset

import "errors"

var (
	// ErrInsufficientBalance indicates the source account holds less than the transfer amount.
	ErrInsufficientBalance = errors.New("asset: insufficient balance")

	// ErrInvalidAmount indicates a nil or zero transfer amount.
	ErrInvalidAmount = errors.New("asset: invalid amount")

	// ErrInvalidAccount indicates a transfer to or from the null address.
	ErrInvalidAccount = errors.New("asset: invalid account")

	// ErrRecipientRejected indicates the recipient hook refused an inbound transfer.
	ErrRecipientRejected = errors.New("asset: recipient rejected transfer")

	// ErrInvalidBalanceRecord indicates an exported balance could not be parsed.
	ErrInvalidBalanceRecord = errors.New("asset: invalid balance record")
)
