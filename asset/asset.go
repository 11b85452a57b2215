// Package asset defines the collaborators the dividend ledger depends on:
// an asset ledger that moves balances and an authorization oracle that
// answers whether a caller administers a project asset.
package asset

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Native is the sentinel asset identity for the host environment's native
// coin. It is only meaningful as a payout asset.
var Native = common.Address{}

// IsNull reports whether addr is the null identity.
func IsNull(addr common.Address) bool {
	return addr == (common.Address{})
}

// Ledger moves balances of fungible assets. The ledger is bound to a single
// custody account that holds locked tokens and undistributed dividends.
type Ledger interface {
	// Custody returns the account that holds locked tokens and dividends.
	Custody() common.Address

	// BalanceOf returns the balance of account in asset.
	BalanceOf(asset, account common.Address) (*uint256.Int, error)

	// Transfer moves amount of asset from the custody account to to.
	Transfer(asset, to common.Address, amount *uint256.Int) error

	// TransferFrom moves amount of asset from from to to.
	TransferFrom(asset, from, to common.Address, amount *uint256.Int) error

	// IsHolder reports whether account currently holds a non-zero balance of asset.
	IsHolder(asset, account common.Address) (bool, error)
}

// Authorizer answers project administration queries.
type Authorizer interface {
	// IsProjectAdmin reports whether caller administers asset.
	IsProjectAdmin(caller, asset common.Address) (bool, error)
}
