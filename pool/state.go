package pool

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ChangeRecord is one exported history entry.
type ChangeRecord struct {
	Seq    uint64
	Amount string // decimal
}

// UserState is the exported lock state of one user.
type UserState struct {
	User    common.Address
	Changes []ChangeRecord // ascending by Seq
}

// PoolState is the exported form of a Pool. The current locks, the total and
// the locker set are derived from the latest change of every user.
type PoolState struct {
	Asset common.Address
	Users []UserState
}

// Export returns the pool's full history.
func (p *Pool) Export() PoolState {
	state := PoolState{Asset: p.asset}
	for _, user := range p.Participants() {
		h := p.history[user]
		us := UserState{User: user, Changes: make([]ChangeRecord, 0, h.Len())}
		for _, seq := range h.seqs {
			us.Changes = append(us.Changes, ChangeRecord{Seq: seq, Amount: h.amounts[seq].Dec()})
		}
		state.Users = append(state.Users, us)
	}
	return state
}

// Export returns every pool in creation order.
func (r *Registry) Export() []PoolState {
	out := make([]PoolState, 0, r.pools.Len())
	for _, p := range r.Pools() {
		out = append(out, p.Export())
	}
	return out
}

// ImportRegistry rebuilds a registry by replaying exported histories.
func ImportRegistry(states []PoolState) (*Registry, error) {
	r := NewRegistry()
	for _, ps := range states {
		p, err := r.Create(ps.Asset)
		if err != nil {
			return nil, fmt.Errorf("pool: import %s: %w", ps.Asset.Hex(), err)
		}
		for _, us := range ps.Users {
			for _, ch := range us.Changes {
				amt, err := uint256.FromDecimal(ch.Amount)
				if err != nil {
					return nil, fmt.Errorf("pool: import %s/%s at %d: %w", ps.Asset.Hex(), us.User.Hex(), ch.Seq, err)
				}
				if err := p.RecordLockChange(us.User, amt, ch.Seq); err != nil {
					return nil, fmt.Errorf("pool: import %s: %w", ps.Asset.Hex(), err)
				}
			}
		}
	}
	return r, nil
}
