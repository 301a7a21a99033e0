package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/core/service"
	"github.com/rl1809/cart-store/internal/port"
)

const (
	LabelAddToCart = "Add to Cart"
	LabelInCart    = "In Cart"

	MessageCatalogFailed = "Failed to load products. Please try again."
	MessageEmptyCart     = "Your cart is empty"
)

var ErrUnknownProduct = errors.New("unknown product")

type ProductCard struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Summary     string          `json:"summary"`
	Category    string          `json:"category"`
	ButtonLabel string          `json:"button_label"`
	Disabled    bool            `json:"disabled"`
}

type ProductGrid struct {
	Cards     []ProductCard `json:"cards"`
	CartCount int           `json:"cart_count"`
	Message   string        `json:"message,omitempty"`
}

type CartLine struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderSummary struct {
	Items    int             `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type CartPage struct {
	Lines     []CartLine   `json:"lines"`
	Empty     bool         `json:"empty"`
	Message   string       `json:"message,omitempty"`
	CartCount int          `json:"cart_count"`
	Summary   OrderSummary `json:"summary"`
}

type Receipt struct {
	Reference string          `json:"reference"`
	Items     int             `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Cleared   bool            `json:"cleared"`
}

// AddInput carries an add-to-cart action. Fields other than ID are only
// used when the id is not part of the displayed catalog.
type AddInput struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Price string `json:"price,omitempty"`
	Image string `json:"image,omitempty"`
}

type BinderOption func(*ViewBinder)

// WithClearOnCheckout empties the cart after a checkout summary is produced.
func WithClearOnCheckout(clear bool) BinderOption {
	return func(b *ViewBinder) { b.clearOnCheckout = clear }
}

// ViewBinder turns user actions into Cart Store calls and re-reads the store
// after each one to build the product grid and cart page.
type ViewBinder struct {
	store      *service.CartStore
	summarizer service.Summarizer
	catalog    port.CatalogSource
	logger     *slog.Logger

	clearOnCheckout bool

	mu         sync.RWMutex
	products   []domain.Product
	catalogErr error
}

func NewViewBinder(store *service.CartStore, summarizer service.Summarizer, catalog port.CatalogSource, logger *slog.Logger, opts ...BinderOption) *ViewBinder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &ViewBinder{
		store:      store,
		summarizer: summarizer,
		catalog:    catalog,
		logger:     logger.With("component", "view_binder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LoadCatalog replaces the displayed product set. On failure the previous
// set is kept and the grid shows an error message.
func (b *ViewBinder) LoadCatalog(ctx context.Context) error {
	products, err := b.catalog.ListProducts(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.catalogErr = err
		b.logger.Error("catalog fetch failed", "error", err)
		return err
	}
	b.products = products
	b.catalogErr = nil
	b.logger.Info("catalog loaded", "products", len(products))
	return nil
}

// ProductGrid recomputes every card's button against current cart membership.
// The badge and every card are read from one cart snapshot.
func (b *ViewBinder) ProductGrid() ProductGrid {
	b.mu.RLock()
	products := b.products
	catalogErr := b.catalogErr
	b.mu.RUnlock()

	cart := b.store.Snapshot()
	grid := ProductGrid{
		Cards:     make([]ProductCard, 0, len(products)),
		CartCount: b.summarizer.LineItemCount(cart),
	}
	if catalogErr != nil {
		grid.Message = MessageCatalogFailed
	}

	for _, p := range products {
		card := ProductCard{
			ID:          p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Image:       p.Image,
			Summary:     p.Summary(),
			Category:    p.Category,
			ButtonLabel: LabelAddToCart,
		}
		if _, inCart := cart[p.ID]; inCart {
			card.ButtonLabel = LabelInCart
			card.Disabled = true
		}
		grid.Cards = append(grid.Cards, card)
	}
	return grid
}

func (b *ViewBinder) AddToCart(ctx context.Context, in AddInput) (ProductGrid, error) {
	id := strings.TrimSpace(in.ID)

	title, price, image := in.Title, domain.ParsePrice(in.Price), in.Image
	if p, ok := b.product(id); ok {
		title, price, image = p.Title, p.Price, p.Image
	} else if _, inCart := b.store.GetEntry(id); !inCart && strings.TrimSpace(in.Title) == "" {
		return b.ProductGrid(), ErrUnknownProduct
	}

	if _, err := b.store.AddItem(ctx, id, title, price, image); err != nil {
		return b.ProductGrid(), err
	}
	return b.ProductGrid(), nil
}

func (b *ViewBinder) ChangeQuantity(ctx context.Context, id string, delta int) CartPage {
	b.store.ChangeQuantity(ctx, id, delta)
	return b.CartPage()
}

func (b *ViewBinder) RemoveFromCart(ctx context.Context, id string) CartPage {
	b.store.RemoveItem(ctx, id)
	return b.CartPage()
}

func (b *ViewBinder) ClearCart(ctx context.Context) CartPage {
	b.store.Clear(ctx)
	return b.CartPage()
}

func (b *ViewBinder) CartPage() CartPage {
	var page CartPage
	shown := domain.NewCart()
	for id, e := range b.store.AllEntries() {
		shown[id] = e
		page.Lines = append(page.Lines, CartLine{
			ID:        id,
			Title:     e.Title,
			Image:     e.Image,
			Quantity:  e.Quantity,
			UnitPrice: e.Price,
			LineTotal: e.LineTotal(),
		})
	}

	summary := b.summarizer.Summarize(shown)
	page.Summary = toOrderSummary(summary)
	page.CartCount = summary.Items
	if len(page.Lines) == 0 {
		page.Lines = []CartLine{}
		page.Empty = true
		page.Message = MessageEmptyCart
	}
	return page
}

// Checkout reports the final summary. The cart is only cleared when the
// binder was built WithClearOnCheckout(true); the receipt then covers exactly
// what was cleared.
func (b *ViewBinder) Checkout(ctx context.Context) Receipt {
	var cart domain.Cart
	if b.clearOnCheckout {
		cart = b.store.SnapshotAndClear(ctx)
	} else {
		cart = b.store.Snapshot()
	}
	receipt := Receipt{
		Reference: uuid.NewString(),
		Items:     b.summarizer.LineItemCount(cart),
		Total:     b.summarizer.Total(cart),
	}
	b.logger.Info("checkout", "reference", receipt.Reference, "items", receipt.Items, "total", receipt.Total.StringFixed(2))

	receipt.Cleared = b.clearOnCheckout && len(cart) > 0
	return receipt
}

func (b *ViewBinder) CartCount() int {
	return b.store.TotalItemCount()
}

func (b *ViewBinder) product(id string) (domain.Product, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, p := range b.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func toOrderSummary(s service.Summary) OrderSummary {
	return OrderSummary{
		Items:    s.Items,
		Subtotal: s.Subtotal,
		Shipping: s.Shipping,
		Total:    s.Total,
	}
}
