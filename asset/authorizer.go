package asset

import (
	"bytes"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Grant records that Admin administers Asset.
type Grant struct {
	Admin common.Address
	Asset common.Address
}

// StaticAuthorizer is an Authorizer backed by an explicit grant set.
type StaticAuthorizer struct {
	mu     sync.RWMutex
	grants map[Grant]struct{}
}

// Compile-time interface check.
var _ Authorizer = (*StaticAuthorizer)(nil)

// NewStaticAuthorizer creates an authorizer seeded with grants.
func NewStaticAuthorizer(grants ...Grant) *StaticAuthorizer {
	a := &StaticAuthorizer{grants: make(map[Grant]struct{}, len(grants))}
	for _, g := range grants {
		a.grants[g] = struct{}{}
	}
	return a
}

// Grant makes admin an administrator of asset.
func (a *StaticAuthorizer) Grant(admin, asset common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants[Grant{Admin: admin, Asset: asset}] = struct{}{}
}

// Revoke removes admin's grant for asset.
func (a *StaticAuthorizer) Revoke(admin, asset common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.grants, Grant{Admin: admin, Asset: asset})
}

// IsProjectAdmin reports whether caller administers asset.
func (a *StaticAuthorizer) IsProjectAdmin(caller, asset common.Address) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.grants[Grant{Admin: caller, Asset: asset}]
	return ok, nil
}

// Grants returns all grants ordered by admin then asset.
func (a *StaticAuthorizer) Grants() []Grant {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Grant, 0, len(a.grants))
	for g := range a.grants {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].Admin[:], out[j].Admin[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(out[i].Asset[:], out[j].Asset[:]) < 0
	})
	return out
}
