package store

import (
	"errors"
)

var (
	ErrStoreNotFound = errors.New("store not found")
)

// StoreProvider selects the backing store for a tenant. Multi-site
// deployments can route tenants to dedicated stores; the default
// deployment serves every tenant from one store.
type StoreProvider interface {
	Provide(clientID string) (Store, error)
}

type ClientStoreProvider struct {
	stores map[string]Store
}

func NewClientStoreProvider() *ClientStoreProvider {
	return &ClientStoreProvider{
		stores: make(map[string]Store),
	}
}

func (p *ClientStoreProvider) Register(clientID string, store Store) {
	p.stores[clientID] = store
}

func (p *ClientStoreProvider) Provide(clientID string) (Store, error) {
	if store, ok := p.stores[clientID]; ok {
		return store, nil
	}

	return nil, ErrStoreNotFound
}

type DefaultProvider struct {
	store Store
}

func NewDefaultProvider(store Store) *DefaultProvider {
	return &DefaultProvider{store: store}
}

func (p *DefaultProvider) Provide(clientID string) (Store, error) {
	return p.store, nil
}
