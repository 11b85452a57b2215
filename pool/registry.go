package pool

import (
	"github.com/ethereum/go-ethereum/common"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry holds one Pool per asset in creation order. A Registry is not
// safe for concurrent use; callers serialize access.
type Registry struct {
	pools *orderedmap.OrderedMap[common.Address, *Pool]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pools: orderedmap.New[common.Address, *Pool]()}
}

// Create allocates a zeroed pool for asset.
func (r *Registry) Create(asset common.Address) (*Pool, error) {
	if asset == (common.Address{}) {
		return nil, ErrInvalidAsset
	}
	if _, exists := r.pools.Get(asset); exists {
		return nil, ErrPoolAlreadyExists
	}
	p := newPool(asset)
	r.pools.Set(asset, p)
	return p, nil
}

// Get returns the pool for asset. Missing pools are an error on every path.
func (r *Registry) Get(asset common.Address) (*Pool, error) {
	if asset == (common.Address{}) {
		return nil, ErrInvalidAsset
	}
	p, ok := r.pools.Get(asset)
	if !ok {
		return nil, ErrPoolDoesNotExist
	}
	return p, nil
}

// Info returns the summary of the pool for asset.
func (r *Registry) Info(asset common.Address) (Info, error) {
	p, err := r.Get(asset)
	if err != nil {
		return Info{}, err
	}
	return p.Info(), nil
}

// Exists reports whether a pool for asset has been created.
func (r *Registry) Exists(asset common.Address) bool {
	_, ok := r.pools.Get(asset)
	return ok
}

// Len returns the number of pools.
func (r *Registry) Len() int { return r.pools.Len() }

// List returns pool summaries in creation order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, r.pools.Len())
	for pair := r.pools.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Info())
	}
	return out
}

// Pools returns the pools in creation order.
func (r *Registry) Pools() []*Pool {
	out := make([]*Pool, 0, r.pools.Len())
	for pair := r.pools.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
