// Package order tracks the single in-flight order submission of a session.
package order

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/transport"
	"go.uber.org/zap"
)

const (
	MsgPlaced = "Order placed successfully!"

	msgFailed   = "Failed to create order."
	msgSignedIn = "Please sign in to place an order."
)

// ErrNotSignedIn is returned by CreateOrder when the session has no token.
var ErrNotSignedIn = errors.New("not signed in")

type Service interface {
	CreateOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderConfirmation, error)
}

type TokenSource interface {
	Token() string
}

// Store holds one order slot. It does not refuse a second CreateOrder while one is
// submitting; callers check Loading first.
type Store struct {
	mu           sync.RWMutex
	status       domain.OrderStatus
	confirmation *domain.OrderConfirmation
	errMsg       string

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
		status:   domain.OrderStatusIdle,
		service:  service,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateOrder submits req. The cart is not touched; clearing it after a success is
// up to the caller.
func (s *Store) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	s.begin()

	token := s.tokens.Token()
	if token == "" {
		s.finishFailed(msgSignedIn)
		return nil, ErrNotSignedIn
	}

	confirmation, err := s.service.CreateOrder(ctx, token, req)
	if err != nil {
		msg := transport.UserMessage(err, msgFailed)
		s.finishFailed(msg)
		s.notifier.Notify(notify.LevelError, msg)
		s.logger.Warn("order submission failed",
			zap.Int("items", len(req.Items)),
			zap.Float64("total_amount", req.TotalAmount),
			zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.mu.Lock()
	s.status = domain.OrderStatusFulfilled
	s.confirmation = confirmation
	s.mu.Unlock()

	s.notifier.Notify(notify.LevelSuccess, MsgPlaced)
	s.logger.Info("order placed", zap.String("order_id", confirmation.ID))
	return confirmation, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !domain.CanTransitionTo(s.status, domain.OrderStatusSubmitting) {
		// a second submission overlapping the first; the later outcome wins
		s.logger.Debug("order submitted while another is in flight")
	}
	s.status = domain.OrderStatusSubmitting
	s.errMsg = ""
}

func (s *Store) finishFailed(msg string) {
	s.mu.Lock()
	s.status = domain.OrderStatusFailed
	s.errMsg = msg
	s.mu.Unlock()
}

func (s *Store) Status() domain.OrderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) Loading() bool {
	return s.Status() == domain.OrderStatusSubmitting
}

// Error is the message of the last failed submission, empty otherwise.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Confirmation is the last fulfilled order. It survives later failures.
func (s *Store) Confirmation() *domain.OrderConfirmation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.confirmation == nil {
		return nil
	}
	c := *s.confirmation
	return &c
}

// Reset returns a terminal slot to idle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if domain.CanTransitionTo(s.status, domain.OrderStatusIdle) {
		s.status = domain.OrderStatusIdle
		s.errMsg = ""
	}
}
