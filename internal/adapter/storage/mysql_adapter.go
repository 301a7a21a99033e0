package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

// CreateCartSnapshotsTable is the schema MySQLAdapter expects.
const CreateCartSnapshotsTable = `
CREATE TABLE IF NOT EXISTS cart_snapshots (
	cart_key       VARCHAR(191) NOT NULL PRIMARY KEY,
	schema_version INT          NOT NULL,
	payload        MEDIUMBLOB   NOT NULL,
	updated_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

type MySQLAdapter struct {
	db  *sql.DB
	key string
}

func NewMySQLAdapter(db *sql.DB, key string) *MySQLAdapter {
	if key == "" {
		key = DefaultCartKey
	}
	return &MySQLAdapter{db: db, key: key}
}

// EnsureSchema creates the snapshot table if it is missing.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, CreateCartSnapshotsTable); err != nil {
		return fmt.Errorf("%w: create table: %v", port.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (m *MySQLAdapter) SaveCart(ctx context.Context, cart domain.Cart) error {
	payload, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", port.ErrPersistenceUnavailable, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_snapshots (cart_key, schema_version, payload, updated_at)
		VALUES (?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			schema_version = VALUES(schema_version),
			payload = VALUES(payload),
			updated_at = NOW()`,
		m.key, schemaVersion, payload,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert snapshot: %v", port.ErrPersistenceUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", port.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (m *MySQLAdapter) LoadCart(ctx context.Context) (domain.Cart, bool, error) {
	var payload []byte
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM cart_snapshots WHERE cart_key = ?`, m.key,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: query snapshot: %v", port.ErrPersistenceUnavailable, err)
	}

	cart, err := decodeCart(payload)
	if err != nil {
		return nil, false, &port.CorruptDataError{Key: m.key, Err: err}
	}
	return cart, true, nil
}
