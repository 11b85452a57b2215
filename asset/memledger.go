package asset

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RecipientHook is invoked before a custody transfer is credited to its
// recipient. Returning an error rejects the transfer and nothing moves.
// Hooks run without the ledger lock held, so they may call back into the
// ledger or into whatever component initiated the transfer.
type RecipientHook func(asset, to common.Address, amount *uint256.Int) error

// MemLedger is an in-memory implementation of Ledger.
type MemLedger struct {
	mu       sync.RWMutex
	custody  common.Address
	balances map[common.Address]map[common.Address]*uint256.Int // asset -> account -> balance
	hook     RecipientHook
}

// Compile-time interface check.
var _ Ledger = (*MemLedger)(nil)

// NewMemLedger creates an empty ledger whose custody account is custody.
func NewMemLedger(custody common.Address) *MemLedger {
	return &MemLedger{
		custody:  custody,
		balances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

// Custody returns the custody account address.
func (l *MemLedger) Custody() common.Address { return l.custody }

// OnTransfer installs a hook called for every outbound custody transfer.
func (l *MemLedger) OnTransfer(hook RecipientHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hook = hook
}

// Mint credits amount of asset to account.
func (l *MemLedger) Mint(asset, account common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if IsNull(account) {
		return fmt.Errorf("%w: mint to null address", ErrInvalidAccount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(asset, account, amount)
	return nil
}

// BalanceOf returns the balance of account in asset.
func (l *MemLedger) BalanceOf(asset, account common.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance(asset, account).Clone(), nil
}

// IsHolder reports whether account holds a non-zero balance of asset.
func (l *MemLedger) IsHolder(asset, account common.Address) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return !l.balance(asset, account).IsZero(), nil
}

// Transfer moves amount of asset from custody to to. The recipient hook sees
// the transfer after validation and before the credit.
func (l *MemLedger) Transfer(asset, to common.Address, amount *uint256.Int) error {
	if err := l.checkMove(asset, l.custody, to, amount); err != nil {
		return err
	}

	l.mu.RLock()
	hook := l.hook
	l.mu.RUnlock()
	if hook != nil {
		if err := hook(asset, to, amount.Clone()); err != nil {
			return fmt.Errorf("%w: %w", ErrRecipientRejected, err)
		}
	}
	return l.move(asset, l.custody, to, amount)
}

// TransferFrom moves amount of asset from from to to.
func (l *MemLedger) TransferFrom(asset, from, to common.Address, amount *uint256.Int) error {
	return l.move(asset, from, to, amount)
}

// checkMove validates a move without applying it.
func (l *MemLedger) checkMove(asset, from, to common.Address, amount *uint256.Int) error {
	if err := checkArgs(to, amount); err != nil {
		return err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.checkBalance(asset, from, amount)
}

func (l *MemLedger) move(asset, from, to common.Address, amount *uint256.Int) error {
	if err := checkArgs(to, amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkBalance(asset, from, amount); err != nil {
		return err
	}
	l.setBalance(asset, from, new(uint256.Int).Sub(l.balance(asset, from), amount))
	l.credit(asset, to, amount)
	return nil
}

func checkArgs(to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if IsNull(to) {
		return fmt.Errorf("%w: transfer to null address", ErrInvalidAccount)
	}
	return nil
}

// checkBalance fails when from holds less than amount. Callers must hold l.mu.
func (l *MemLedger) checkBalance(asset, from common.Address, amount *uint256.Int) error {
	if bal := l.balance(asset, from); bal.Lt(amount) {
		return fmt.Errorf("%w: account %s holds %s, need %s",
			ErrInsufficientBalance, from.Hex(), bal.Dec(), amount.Dec())
	}
	return nil
}

// balance returns the stored balance, or zero. Callers must hold l.mu.
func (l *MemLedger) balance(asset, account common.Address) *uint256.Int {
	if accounts, ok := l.balances[asset]; ok {
		if b, ok := accounts[account]; ok {
			return b
		}
	}
	return new(uint256.Int)
}

func (l *MemLedger) credit(asset, account common.Address, amount *uint256.Int) {
	l.setBalance(asset, account, new(uint256.Int).Add(l.balance(asset, account), amount))
}

func (l *MemLedger) setBalance(asset, account common.Address, amount *uint256.Int) {
	accounts, ok := l.balances[asset]
	if !ok {
		accounts = make(map[common.Address]*uint256.Int)
		l.balances[asset] = accounts
	}
	if amount.IsZero() {
		delete(accounts, account)
		return
	}
	accounts[account] = amount
}

// BalanceRecord is the exported form of one non-zero balance.
type BalanceRecord struct {
	Asset   common.Address
	Account common.Address
	Amount  string // decimal
}

// LedgerState is the exported form of a MemLedger.
type LedgerState struct {
	Custody  common.Address
	Balances []BalanceRecord
}

// Export returns every non-zero balance, ordered by asset then account.
func (l *MemLedger) Export() *LedgerState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state := &LedgerState{Custody: l.custody}
	for a, accounts := range l.balances {
		for acct, amt := range accounts {
			state.Balances = append(state.Balances, BalanceRecord{Asset: a, Account: acct, Amount: amt.Dec()})
		}
	}
	sort.Slice(state.Balances, func(i, j int) bool {
		bi, bj := state.Balances[i], state.Balances[j]
		if c := bytes.Compare(bi.Asset[:], bj.Asset[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(bi.Account[:], bj.Account[:]) < 0
	})
	return state
}

// ImportMemLedger rebuilds a ledger from an exported state.
func ImportMemLedger(state *LedgerState) (*MemLedger, error) {
	l := NewMemLedger(state.Custody)
	for _, rec := range state.Balances {
		amt, err := uint256.FromDecimal(rec.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", ErrInvalidBalanceRecord, rec.Asset.Hex(), rec.Account.Hex(), err)
		}
		if amt.IsZero() {
			continue
		}
		l.setBalance(rec.Asset, rec.Account, amt)
	}
	return l, nil
}
