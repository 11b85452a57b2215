package asset

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MockLedger is a test double for Ledger.
// Function fields must be set before the corresponding method is called.
type MockLedger struct {
	CustodyAddr    common.Address
	BalanceOfFn    func(asset, account common.Address) (*uint256.Int, error)
	TransferFn     func(asset, to common.Address, amount *uint256.Int) error
	TransferFromFn func(asset, from, to common.Address, amount *uint256.Int) error
	IsHolderFn     func(asset, account common.Address) (bool, error)
}

func (m *MockLedger) Custody() common.Address { return m.CustodyAddr }
func (m *MockLedger) BalanceOf(asset, account common.Address) (*uint256.Int, error) {
	return m.BalanceOfFn(asset, account)
}
func (m *MockLedger) Transfer(asset, to common.Address, amount *uint256.Int) error {
	return m.TransferFn(asset, to, amount)
}
func (m *MockLedger) TransferFrom(asset, from, to common.Address, amount *uint256.Int) error {
	return m.TransferFromFn(asset, from, to, amount)
}
func (m *MockLedger) IsHolder(asset, account common.Address) (bool, error) {
	return m.IsHolderFn(asset, account)
}

// MockAuthorizer is a test double for Authorizer.
type MockAuthorizer struct {
	IsProjectAdminFn func(caller, asset common.Address) (bool, error)
}

func (m *MockAuthorizer) IsProjectAdmin(caller, asset common.Address) (bool, error) {
	return m.IsProjectAdminFn(caller, asset)
}
