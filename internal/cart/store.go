// Package cart keeps the client-side projection of the signed-in user's cart.
//
// Add, Remove and Fetch go to the remote service and, on success, replace the item
// list wholesale with whatever the service returned. Quantity edits stay local until
// the next add/remove/order; a Fetch discards them. Concurrent remote calls are not
// sequenced: the last response to arrive wins.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/transport"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MsgAdded     = "Item added to cart"
	MsgRemoved   = "Item removed from cart"
	MsgIncreased = "Item quantity increased"
	MsgDecreased = "Item quantity decreased"

	msgFetchFailed  = "Failed to load your cart."
	msgAddFailed    = "Failed to add item to cart."
	msgRemoveFailed = "Failed to remove item from cart."
)

// Service is the remote side of the cart.
type Service interface {
	GetCart(ctx context.Context, token string) (*domain.CartPayload, error)
	AddToCart(ctx context.Context, token, productID string, quantity int) (*domain.CartPayload, error)
	RemoveFromCart(ctx context.Context, token, itemID string) (*domain.CartPayload, error)
}

type TokenSource interface {
	Token() string
}

type Store struct {
	mu    sync.RWMutex
	items []*domain.CartItem
	err   error

	service  Service
	tokens   TokenSource
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewStore(service Service, tokens TokenSource, notifier notify.Notifier, logger *zap.Logger) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		items:    []*domain.CartItem{},
		service:  service,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// Fetch reloads the cart. Without a token it does nothing. On failure the items are
// left alone and the error is kept for Err.
func (s *Store) Fetch(ctx context.Context) error {
	token := s.tokens.Token()
	if token == "" {
		s.logger.Debug("skipping cart fetch: not signed in")
		return nil
	}

	payload, err := s.service.GetCart(ctx, token)
	if err != nil {
		s.fail(err)
		s.logger.Warn("cart fetch failed", zap.Error(err))
		return fmt.Errorf("fetch cart: %w", err)
	}

	s.replace(payload)
	return nil
}

func (s *Store) Add(ctx context.Context, productID string, quantity int) error {
	token := s.tokens.Token()
	if token == "" {
		s.logger.Debug("skipping add to cart: not signed in", zap.String("product_id", productID))
		return nil
	}

	payload, err := s.service.AddToCart(ctx, token, productID, quantity)
	if err != nil {
		s.fail(err)
		s.notifier.Notify(notify.LevelError, transport.UserMessage(err, msgAddFailed))
		s.logger.Warn("add to cart failed", zap.String("product_id", productID), zap.Error(err))
		return fmt.Errorf("add %s to cart: %w", productID, err)
	}

	if s.replace(payload) {
		s.notifier.Notify(notify.LevelSuccess, MsgAdded)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, itemID string) error {
	token := s.tokens.Token()
	if token == "" {
		s.logger.Debug("skipping remove from cart: not signed in", zap.String("item_id", itemID))
		return nil
	}

	payload, err := s.service.RemoveFromCart(ctx, token, itemID)
	if err != nil {
		s.fail(err)
		s.notifier.Notify(notify.LevelError, transport.UserMessage(err, msgRemoveFailed))
		s.logger.Warn("remove from cart failed", zap.String("item_id", itemID), zap.Error(err))
		return fmt.Errorf("remove %s from cart: %w", itemID, err)
	}

	if s.replace(payload) {
		s.notifier.Notify(notify.LevelWarning, MsgRemoved)
	}
	return nil
}

// IncreaseQuantity bumps the quantity of id locally. Unknown ids are ignored.
func (s *Store) IncreaseQuantity(id string) {
	s.mu.Lock()
	item := s.find(id)
	if item != nil {
		item.Quantity++
	}
	s.mu.Unlock()

	if item != nil {
		s.notifier.Notify(notify.LevelSuccess, MsgIncreased)
	}
}

// DecreaseQuantity lowers the quantity of id locally, never below 1.
func (s *Store) DecreaseQuantity(id string) {
	s.mu.Lock()
	item := s.find(id)
	changed := item != nil && item.Quantity > 1
	if changed {
		item.Quantity--
	}
	s.mu.Unlock()

	if changed {
		s.notifier.Notify(notify.LevelInfo, MsgDecreased)
	}
}

// Clear empties the cart locally. The service clears its copy when an order is placed.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []*domain.CartItem{}
}

// Items returns a copy of the stored list, nil holes included.
func (s *Store) Items() []*domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Visible returns the items worth rendering.
func (s *Store) Visible() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.VisibleItems(s.items)
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Subtotal(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Err is the error of the most recent remote call, nil after a success.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// replace swaps in the payload's items. A payload without an items list changes
// nothing and reports false.
func (s *Store) replace(payload *domain.CartPayload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
	if payload == nil || payload.Items == nil {
		return false
	}
	s.items = cloneItems(payload.Items)
	return true
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// find must be called with mu held.
func (s *Store) find(id string) *domain.CartItem {
	for _, item := range s.items {
		if item != nil && item.ID == id {
			return item
		}
	}
	return nil
}

func cloneItems(items []*domain.CartItem) []*domain.CartItem {
	out := make([]*domain.CartItem, len(items))
	for i, item := range items {
		if item != nil {
			c := *item
			out[i] = &c
		}
	}
	return out
}
