package cart

import (
	"context"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

// mockService answers every call with payload/err unless a gate is registered for the
// product, in which case AddToCart waits for it.
type mockService struct {
	mu      sync.Mutex
	payload *domain.CartPayload
	err     error
	calls   []string
	gates   map[string]chan *domain.CartPayload
}

func (m *mockService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockService) GetCart(_ context.Context, token string) (*domain.CartPayload, error) {
	m.record("get:" + token)
	return m.payload, m.err
}

func (m *mockService) AddToCart(ctx context.Context, token, productID string, _ int) (*domain.CartPayload, error) {
	m.record("add:" + productID)
	m.mu.Lock()
	gate, ok := m.gates[productID]
	m.mu.Unlock()
	if ok {
		select {
		case p := <-gate:
			return p, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.payload, m.err
}

func (m *mockService) RemoveFromCart(_ context.Context, _ string, itemID string) (*domain.CartPayload, error) {
	m.record("remove:" + itemID)
	return m.payload, m.err
}

func items(list ...*domain.CartItem) *domain.CartPayload {
	if list == nil {
		list = []*domain.CartItem{}
	}
	return &domain.CartPayload{Items: list}
}

func item(id, price string, qty int) *domain.CartItem {
	return &domain.CartItem{ID: id, Name: "item " + id, Price: price, Quantity: qty}
}

func newTestStore(svc *mockService, token string) (*Store, *notify.Feed) {
	feed := notify.NewFeed(16)
	return NewStore(svc, staticToken(token), feed, nil), feed
}
