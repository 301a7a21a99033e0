package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

const (
	DefaultURL     = "https://fakestoreapi.com/products"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// remoteProduct holds one remote record field by field. Any field may be
// missing or of the wrong JSON type; such fields read as empty text.
type remoteProduct map[string]json.RawMessage

func (r remoteProduct) text(field string) string {
	return rawScalar(r[field])
}

// HTTPCatalog reads the product list from a JSON endpoint.
type HTTPCatalog struct {
	client *http.Client
	url    string
}

func NewHTTPCatalog(client *http.Client, url string) *HTTPCatalog {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if url == "" {
		url = DefaultURL
	}
	return &HTTPCatalog{client: client, url: url}
}

func (c *HTTPCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", port.ErrCatalogFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrCatalogFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", port.ErrCatalogFetch, resp.StatusCode)
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", port.ErrCatalogFetch, err)
	}

	records := make([]remoteProduct, 0, len(raw))
	for _, item := range raw {
		var r remoteProduct
		if err := json.Unmarshal(item, &r); err != nil || r == nil {
			continue
		}
		records = append(records, r)
	}
	return normalize(records), nil
}

func normalize(records []remoteProduct) []domain.Product {
	products := make([]domain.Product, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		id := domain.CatalogID(r.text("id"))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		products = append(products, domain.Product{
			ID:          id,
			Title:       r.text("title"),
			Price:       domain.ParsePrice(r.text("price")),
			Image:       r.text("image"),
			Description: r.text("description"),
			Category:    r.text("category"),
		})
	}
	return products
}

// rawScalar renders a JSON number or string as plain text. Anything else
// (null, bools, arrays, objects) reads as "".
func rawScalar(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return strings.TrimSpace(num.String())
	}
	return ""
}
