package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/cart-store/internal/core/domain"
)

const (
	// DefaultCartKey is the fixed key the cart snapshot lives under.
	DefaultCartKey = "ecommerce_cart:v1"

	schemaVersion = 1
)

var errUnsupportedVersion = errors.New("unsupported schema version")

type snapshot struct {
	Version int                      `json:"version"`
	Items   map[string]snapshotEntry `json:"items"`
}

type snapshotEntry struct {
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// MarshalJSON writes the price as a JSON number.
func (e snapshotEntry) MarshalJSON() ([]byte, error) {
	type alias struct {
		Title    string      `json:"title"`
		Price    json.Number `json:"price"`
		Image    string      `json:"image"`
		Quantity int         `json:"quantity"`
	}
	return json.Marshal(alias{
		Title:    e.Title,
		Price:    json.Number(e.Price.String()),
		Image:    e.Image,
		Quantity: e.Quantity,
	})
}

// encodeCart serializes a cart in the versioned layout.
func encodeCart(cart domain.Cart) ([]byte, error) {
	s := snapshot{
		Version: schemaVersion,
		Items:   make(map[string]snapshotEntry, len(cart)),
	}
	for id, e := range cart {
		s.Items[id] = snapshotEntry{
			Title:    e.Title,
			Price:    e.Price,
			Image:    e.Image,
			Quantity: e.Quantity,
		}
	}
	return json.Marshal(s)
}

// decodeCart accepts the versioned layout and the older bare id->entry map.
// Entries with a quantity below one are dropped.
func decodeCart(data []byte) (domain.Cart, error) {
	data = bytes.TrimSpace(data)

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe == nil {
		return nil, errors.New("payload is not an object")
	}

	items := make(map[string]snapshotEntry)
	if isVersioned(probe) {
		var s snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		if s.Version != schemaVersion {
			return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, s.Version)
		}
		items = s.Items
	} else if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	cart := domain.NewCart()
	for id, e := range items {
		if id == "" || e.Quantity < 1 {
			continue
		}
		cart[id] = domain.CartEntry{
			ID:       id,
			Title:    e.Title,
			Price:    domain.NormalizePrice(e.Price),
			Image:    e.Image,
			Quantity: e.Quantity,
		}
	}
	return cart, nil
}

func isVersioned(probe map[string]json.RawMessage) bool {
	_, hasVersion := probe["version"]
	_, hasItems := probe["items"]
	return hasVersion && hasItems
}
