package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cart-store/internal/port"
)

func TestMemoryAdapter_RoundTrip(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	_, ok, err := adapter.LoadCart(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, adapter.SaveCart(ctx, sampleCart()))
	cart, ok, err := adapter.LoadCart(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, sampleCart().Equal(cart))
}

func TestMemoryAdapter_Corrupt(t *testing.T) {
	adapter := NewMemoryAdapter()
	adapter.SetRaw([]byte("not json"))

	_, _, err := adapter.LoadCart(context.Background())
	var corrupt *port.CorruptDataError
	assert.ErrorAs(t, err, &corrupt)
}
