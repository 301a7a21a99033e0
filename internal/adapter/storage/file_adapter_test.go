package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

func TestFileAdapter_MissingFileIsNoData(t *testing.T) {
	adapter := NewFileAdapter(filepath.Join(t.TempDir(), "cart.json"))

	cart, ok, err := adapter.LoadCart(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, cart)
}

func TestFileAdapter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	adapter := NewFileAdapter(filepath.Join(dir, "nested", "cart.json"))
	ctx := context.Background()

	require.NoError(t, adapter.SaveCart(ctx, sampleCart()))
	require.NoError(t, adapter.SaveCart(ctx, domain.NewCart()))

	cart, ok, err := adapter.LoadCart(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, cart)

	require.NoError(t, adapter.SaveCart(ctx, sampleCart()))
	cart, ok, err = adapter.LoadCart(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, sampleCart().Equal(cart))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileAdapter_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	_, ok, err := NewFileAdapter(path).LoadCart(context.Background())
	assert.False(t, ok)

	var corrupt *port.CorruptDataError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, path, corrupt.Key)
}

func TestFileAdapter_UnwritableDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(base, nil, 0o644))

	// parent "directory" is a regular file
	adapter := NewFileAdapter(filepath.Join(base, "cart.json"))
	err := adapter.SaveCart(context.Background(), sampleCart())
	assert.ErrorIs(t, err, port.ErrPersistenceUnavailable)
}
