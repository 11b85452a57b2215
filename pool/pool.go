// Package pool tracks locked balances per asset. Each Pool keeps the current
// lock of every user together with a sparse history of lock changes keyed by
// distribution sequence, so that the lock held before any past distribution
// can be reconstructed.
package pool

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Pool holds the locks for one asset.
type Pool struct {
	asset   common.Address
	lockers map[common.Address]struct{}
	total   *uint256.Int
	locked  map[common.Address]*uint256.Int
	history map[common.Address]*History
}

// Info is a read-only summary of a pool.
type Info struct {
	Asset       common.Address
	LockerCount uint64
	TotalLocked *uint256.Int
}

func newPool(asset common.Address) *Pool {
	return &Pool{
		asset:   asset,
		lockers: make(map[common.Address]struct{}),
		total:   new(uint256.Int),
		locked:  make(map[common.Address]*uint256.Int),
		history: make(map[common.Address]*History),
	}
}

// Asset returns the locked asset.
func (p *Pool) Asset() common.Address { return p.asset }

// Info returns the pool summary.
func (p *Pool) Info() Info {
	return Info{
		Asset:       p.asset,
		LockerCount: p.LockerCount(),
		TotalLocked: p.total.Clone(),
	}
}

// TotalLocked returns the sum of all current locks.
func (p *Pool) TotalLocked() *uint256.Int { return p.total.Clone() }

// LockerCount returns the number of users holding a non-zero lock.
func (p *Pool) LockerCount() uint64 { return uint64(len(p.lockers)) }

// IsLocker reports whether user currently holds a non-zero lock.
func (p *Pool) IsLocker(user common.Address) bool {
	_, ok := p.lockers[user]
	return ok && !p.CurrentLock(user).IsZero()
}

// CurrentLock returns user's current lock, or zero.
func (p *Pool) CurrentLock(user common.Address) *uint256.Int {
	if amt, ok := p.locked[user]; ok {
		return amt.Clone()
	}
	return new(uint256.Int)
}

// Lockers returns the current lockers in address order.
func (p *Pool) Lockers() []common.Address {
	out := make([]common.Address, 0, len(p.lockers))
	for u := range p.lockers {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

// Lock adds amount to user's lock, recording the change at nextSeq.
func (p *Pool) Lock(user common.Address, amount *uint256.Int, nextSeq uint64) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	updated, overflow := new(uint256.Int).AddOverflow(p.CurrentLock(user), amount)
	if overflow {
		return fmt.Errorf("%w: lock overflows", ErrInvalidAmount)
	}
	return p.RecordLockChange(user, updated, nextSeq)
}

// Unlock removes amount from user's lock, recording the change at nextSeq.
func (p *Pool) Unlock(user common.Address, amount *uint256.Int, nextSeq uint64) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	current := p.CurrentLock(user)
	if current.Lt(amount) {
		return fmt.Errorf("%w: locked %s, requested %s", ErrInsufficientLock, current.Dec(), amount.Dec())
	}
	return p.RecordLockChange(user, new(uint256.Int).Sub(current, amount), nextSeq)
}

// RecordLockChange sets user's lock to newAmount as of the start of
// distribution nextSeq, keeping the total and the locker set in step.
func (p *Pool) RecordLockChange(user common.Address, newAmount *uint256.Int, nextSeq uint64) error {
	if user == (common.Address{}) {
		return ErrInvalidUser
	}
	if newAmount == nil {
		newAmount = new(uint256.Int)
	}

	old := p.CurrentLock(user)
	total := new(uint256.Int).Sub(p.total, old)
	total, overflow := total.AddOverflow(total, newAmount)
	if overflow {
		return fmt.Errorf("%w: total locked overflows", ErrInvalidAmount)
	}

	h, ok := p.history[user]
	if !ok {
		h = NewHistory()
	}
	if err := h.Record(nextSeq, newAmount); err != nil {
		return fmt.Errorf("%w: user %s at %d", err, user.Hex(), nextSeq)
	}
	p.history[user] = h
	p.total = total

	if newAmount.IsZero() {
		delete(p.locked, user)
		delete(p.lockers, user)
		return nil
	}
	p.locked[user] = newAmount.Clone()
	p.lockers[user] = struct{}{}
	return nil
}

// FindPrecedingChange returns the latest sequence before targetSeq at which
// user's lock changed.
func (p *Pool) FindPrecedingChange(user common.Address, targetSeq uint64) (uint64, bool) {
	h, ok := p.history[user]
	if !ok {
		return 0, false
	}
	return h.Preceding(targetSeq)
}

// LockAt returns user's lock as it stood immediately before distribution seq.
func (p *Pool) LockAt(user common.Address, seq uint64) *uint256.Int {
	h, ok := p.history[user]
	if !ok {
		return new(uint256.Int)
	}
	return h.LockAt(seq)
}

// History returns user's timeline, or nil if the user never locked.
func (p *Pool) History(user common.Address) *History {
	return p.history[user]
}

// Participants returns every user with a recorded history, in address order.
func (p *Pool) Participants() []common.Address {
	out := make([]common.Address, 0, len(p.history))
	for u := range p.history {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
