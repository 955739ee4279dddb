package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_storefront/internal/server/cache"
	"github.com/fjod/go_storefront/internal/server/metrics"
	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/fjod/go_storefront/internal/server/service"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memCarts struct {
	m     sync.Mutex
	carts map[string]*model.Cart
}

func (c *memCarts) GetCart(_ context.Context, userID string) (*model.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	cart, ok := c.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *cart
	cp.Items = append([]model.CartLine(nil), cart.Items...)
	return &cp, nil
}

func (c *memCarts) AddItem(_ context.Context, userID, productID string, quantity, maxQuantity int) error {
	c.m.Lock()
	defer c.m.Unlock()
	now := time.Now().UTC()
	cart, ok := c.carts[userID]
	if !ok {
		cart = &model.Cart{UserID: userID, CreatedAt: now}
		c.carts[userID] = cart
	}
	cart.UpdatedAt = now
	if existing := cart.Line(productID); existing != nil {
		existing.Quantity = min(existing.Quantity+quantity, maxQuantity)
		return nil
	}
	cart.Items = append(cart.Items, model.CartLine{ProductID: productID, Quantity: min(quantity, maxQuantity), AddedAt: now})
	return nil
}

func (c *memCarts) RemoveItem(_ context.Context, userID, productID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	cart, ok := c.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i, line := range cart.Items {
		if line.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (c *memCarts) DeleteCart(_ context.Context, userID string, before time.Time) error {
	c.m.Lock()
	defer c.m.Unlock()
	if cart, ok := c.carts[userID]; !ok || !cart.UpdatedAt.Before(before) {
		return repository.ErrCartNotFound
	}
	delete(c.carts, userID)
	return nil
}

type memUsers struct {
	m     sync.Mutex
	users map[uuid.UUID]model.User
}

func (u *memUsers) CreateUser(_ context.Context, user *model.User) error {
	u.m.Lock()
	defer u.m.Unlock()
	for _, existing := range u.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}
	u.users[user.ID] = *user
	return nil
}

func (u *memUsers) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u.m.Lock()
	defer u.m.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (u *memUsers) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	u.m.Lock()
	defer u.m.Unlock()
	for _, user := range u.users {
		if strings.EqualFold(user.Email, login) || user.Phone == login {
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (u *memUsers) UpdateUser(_ context.Context, user *model.User) error {
	u.m.Lock()
	defer u.m.Unlock()
	u.users[user.ID] = *user
	return nil
}

type memOrders struct {
	m      sync.Mutex
	orders []*model.Order
	events []*model.OutboxEvent
}

func (o *memOrders) CreateOrder(_ context.Context, order *model.Order, event *model.OutboxEvent) error {
	o.m.Lock()
	defer o.m.Unlock()
	order.CreatedAt = time.Now().UTC()
	o.orders = append(o.orders, order)
	o.events = append(o.events, event)
	return nil
}

func (o *memOrders) GetOrderByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o.m.Lock()
	defer o.m.Unlock()
	for _, order := range o.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (o *memOrders) ListOrdersByUserID(_ context.Context, userID uuid.UUID) ([]*model.Order, error) {
	o.m.Lock()
	defer o.m.Unlock()
	var out []*model.Order
	for _, order := range o.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

type memSubscribers struct {
	m      sync.Mutex
	emails map[string]bool
}

func (s *memSubscribers) AddSubscriber(_ context.Context, email string) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.emails[email] {
		return repository.ErrAlreadySubscribed
	}
	s.emails[email] = true
	return nil
}

type testServer struct {
	handler http.Handler
	orders  *memOrders
	metrics *metrics.ServerMetrics
	mr      *miniredis.Miniredis
}

// newTestServer wires the real services over in-memory repositories, a seeded
// in-memory SQLite catalog and miniredis.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	catalog, err := repository.NewSQLiteCatalog(":memory:")
	require.NoError(t, err)
	require.NoError(t, catalog.RunMigrations())
	t.Cleanup(func() { catalog.Close() })

	logger := zap.NewNop()
	carts := service.NewCartService(&memCarts{carts: map[string]*model.Cart{}}, cache.NewRedisCache(rdb), catalog, "₹", logger)
	orders := &memOrders{}
	m := metrics.NewServerMetrics(prometheus.NewRegistry())

	handler := NewRouter(RouterConfig{
		Carts:      carts,
		Orders:     service.NewOrderService(orders, catalog, carts, "₹", logger),
		Catalog:    catalog,
		Auth:       service.NewAuthService(&memUsers{users: map[uuid.UUID]model.User{}}, cache.NewTokenStore(rdb, time.Hour), logger),
		Newsletter: service.NewNewsletterService(&memSubscribers{emails: map[string]bool{}}),
		Metrics:    m,
		Glyph:      "₹",
		Logger:     logger,
	})
	return &testServer{handler: handler, orders: orders, metrics: m, mr: mr}
}
