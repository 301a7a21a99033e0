package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

// FileAdapter keeps the snapshot in a single JSON file.
type FileAdapter struct {
	path string
}

func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

// SaveCart writes a temp file next to the target and renames it into place.
func (f *FileAdapter) SaveCart(ctx context.Context, cart domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %v", port.ErrPersistenceUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", port.ErrPersistenceUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %v", port.ErrPersistenceUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync: %v", port.ErrPersistenceUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", port.ErrPersistenceUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", port.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (f *FileAdapter) LoadCart(ctx context.Context) (domain.Cart, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	payload, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read: %v", port.ErrPersistenceUnavailable, err)
	}

	cart, err := decodeCart(payload)
	if err != nil {
		return nil, false, &port.CorruptDataError{Key: f.path, Err: err}
	}
	return cart, true, nil
}
