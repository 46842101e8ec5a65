package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientStoreProvider(t *testing.T) {
	provider := NewClientStoreProvider()
	dedicated := NewNopStore()
	provider.Register("studio-a", dedicated)

	got, err := provider.Provide("studio-a")
	assert.NoError(t, err)
	assert.Same(t, dedicated, got)

	_, err = provider.Provide("studio-b")
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestDefaultProvider(t *testing.T) {
	shared := NewNopStore()
	provider := NewDefaultProvider(shared)

	for _, clientID := range []string{"", "studio-a", "studio-b"} {
		got, err := provider.Provide(clientID)
		assert.NoError(t, err)
		assert.Same(t, shared, got)
	}
}
