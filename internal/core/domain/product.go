package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// CatalogIDPrefix namespaces ids coming from the remote catalog.
	CatalogIDPrefix = "api-"

	descriptionLimit = 90
)

// Product is a read-only catalog record.
type Product struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Image       string
	Description string
	Category    string
}

// CatalogID namespaces a remote catalog id.
func CatalogID(remoteID string) string {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return ""
	}
	return CatalogIDPrefix + remoteID
}

// Summary returns the description cut for a product card.
func (p Product) Summary() string {
	r := []rune(p.Description)
	if len(r) <= descriptionLimit {
		return p.Description
	}
	return string(r[:descriptionLimit]) + "..."
}
