package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

var ErrInvalidID = errors.New("invalid item id")

// CartStore is the only mutator of the cart. Every mutation is written
// through the repository before the call returns. Storage problems are
// logged and absorbed; once a write fails the store keeps working
// in memory only for the rest of the session.
type CartStore struct {
	repo   port.CartRepository
	logger *slog.Logger

	mu       sync.Mutex
	cart     domain.Cart
	degraded bool
}

func NewCartStore(repo port.CartRepository, logger *slog.Logger) *CartStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartStore{
		repo:     repo,
		logger:   logger.With("component", "cart_store"),
		cart:     domain.NewCart(),
		degraded: repo == nil,
	}
}

// Initialize loads the persisted cart. Missing data gives an empty cart,
// corrupt data is discarded and an unreachable backend degrades the store.
func (s *CartStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.NewCart()
	if s.repo == nil {
		s.degraded = true
		return
	}

	cart, ok, err := s.repo.LoadCart(ctx)
	if err != nil {
		var corrupt *port.CorruptDataError
		if errors.As(err, &corrupt) {
			s.logger.Warn("discarding corrupt cart", "error", err)
			return
		}
		s.logger.Error("cart storage unavailable, continuing in memory", "error", err)
		s.degraded = true
		return
	}
	if !ok {
		s.logger.Debug("no stored cart")
		return
	}

	for id, e := range cart {
		if id == "" || e.Quantity < 1 {
			continue
		}
		e.ID = id
		e.Price = domain.NormalizePrice(e.Price)
		s.cart[id] = e
	}
	s.logger.Info("cart restored", "entries", len(s.cart))
}

// AddItem inserts id with quantity 1 or bumps an existing entry by one.
func (s *CartStore) AddItem(ctx context.Context, id, title string, price decimal.Decimal, image string) (domain.CartEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.CartEntry{}, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cart[id]
	if ok {
		entry.Quantity++
	} else {
		entry = domain.CartEntry{
			ID:       id,
			Title:    title,
			Price:    domain.NormalizePrice(price),
			Image:    image,
			Quantity: 1,
		}
	}
	s.cart[id] = entry
	s.persist(ctx, "add")

	return entry, nil
}

// ChangeQuantity adds delta to an existing entry and removes it when the
// quantity drops to zero or below. Unknown ids, a zero delta and a delta
// that would overflow the quantity are no-ops. It returns the entry and
// whether it is still in the cart.
func (s *CartStore) ChangeQuantity(ctx context.Context, id string, delta int) (domain.CartEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cart[id]
	if !ok {
		return domain.CartEntry{}, false
	}
	if delta == 0 {
		s.logger.Debug("ignoring zero quantity delta", "id", id)
		return entry, true
	}
	if delta > 0 && entry.Quantity > math.MaxInt-delta {
		s.logger.Warn("ignoring quantity delta that would overflow", "id", id, "quantity", entry.Quantity, "delta", delta)
		return entry, true
	}

	entry.Quantity += delta
	if entry.Quantity <= 0 {
		delete(s.cart, id)
		s.persist(ctx, "change_quantity")
		return domain.CartEntry{}, false
	}

	s.cart[id] = entry
	s.persist(ctx, "change_quantity")
	return entry, true
}

// RemoveItem deletes id. It reports whether anything was removed.
func (s *CartStore) RemoveItem(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cart[id]; !ok {
		return false
	}
	delete(s.cart, id)
	s.persist(ctx, "remove")
	return true
}

func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.NewCart()
	s.persist(ctx, "clear")
}

// SnapshotAndClear returns the cart and empties it under one lock, so no
// mutation can land between the read and the clear. An empty cart is not
// written back.
func (s *CartStore) SnapshotAndClear(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart
	if len(cart) == 0 {
		return domain.NewCart()
	}
	s.cart = domain.NewCart()
	s.persist(ctx, "checkout_clear")
	return cart
}

func (s *CartStore) GetEntry(id string) (domain.CartEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cart[id]
	return entry, ok
}

// AllEntries yields the entries ordered by id. Each iteration works on a
// copy taken when it starts, so mutations made while ranging are not seen.
func (s *CartStore) AllEntries() iter.Seq2[string, domain.CartEntry] {
	return func(yield func(string, domain.CartEntry) bool) {
		snapshot := s.Snapshot()
		for _, id := range snapshot.IDs() {
			if !yield(id, snapshot[id]) {
				return
			}
		}
	}
}

func (s *CartStore) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return countItems(s.cart)
}

// Snapshot returns a copy of the current cart.
func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

// Degraded reports whether the store stopped writing to storage.
func (s *CartStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.degraded
}

// Close flushes the cart one last time.
func (s *CartStore) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persist(ctx, "close")
}

// persist must be called with mu held.
func (s *CartStore) persist(ctx context.Context, op string) {
	if s.degraded {
		return
	}
	if err := s.repo.SaveCart(ctx, s.cart.Clone()); err != nil {
		s.degraded = true
		s.logger.Error("failed to save cart, continuing in memory", "op", op, "error", err)
	}
}

func countItems(cart domain.Cart) int {
	total := 0
	for _, e := range cart {
		total += e.Quantity
	}
	return total
}
