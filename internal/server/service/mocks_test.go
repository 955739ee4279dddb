package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_storefront/internal/server/cache"
	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockCartRepo struct {
	m       sync.Mutex
	carts   map[string]*model.Cart
	err     error
	getHits atomic.Int32
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: map[string]*model.Cart{}}
}

func (m *mockCartRepo) GetCart(_ context.Context, userID string) (*model.Cart, error) {
	m.getHits.Add(1)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]model.CartLine(nil), c.Items...)
	return &cp, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, userID, productID string, quantity, maxQuantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	now := time.Now().UTC()
	c, ok := m.carts[userID]
	if !ok {
		c = &model.Cart{UserID: userID, CreatedAt: now}
		m.carts[userID] = c
	}
	c.UpdatedAt = now
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = min(c.Items[i].Quantity+quantity, maxQuantity)
			return nil
		}
	}
	c.Items = append(c.Items, model.CartLine{ProductID: productID, Quantity: min(quantity, maxQuantity), AddedAt: now})
	return nil
}

func (m *mockCartRepo) RemoveItem(_ context.Context, userID, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i, line := range c.Items {
		if line.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (m *mockCartRepo) DeleteCart(_ context.Context, userID string, before time.Time) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if c, ok := m.carts[userID]; !ok || !c.UpdatedAt.Before(before) {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

type mockCache struct {
	m       sync.Mutex
	data    map[string]*model.Cart
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string]*model.Cart{}}
}

func (c *mockCache) Get(_ context.Context, userID string) (*model.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	cart, ok := c.data[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (c *mockCache) Set(_ context.Context, userID string, cart *model.Cart) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.data[userID] = cart
	return nil
}

func (c *mockCache) Delete(_ context.Context, userID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deletes++
	delete(c.data, userID)
	return nil
}

type mockCatalog struct {
	products map[string]*model.Product
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{products: map[string]*model.Product{
		"neem-cake-2kg": {ID: "neem-cake-2kg", Name: "Neem Cake", Price: decimal.RequireFromString("199.00")},
		"bone-meal-1kg": {ID: "bone-meal-1kg", Name: "Bone Meal", Price: decimal.RequireFromString("249.00")},
	}}
}

func (c *mockCatalog) GetAllProducts(context.Context) ([]*model.Product, error) {
	out := make([]*model.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out, nil
}

func (c *mockCatalog) GetProduct(_ context.Context, id string) (*model.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

type mockOrders struct {
	m      sync.Mutex
	orders map[uuid.UUID]*model.Order
	events []*model.OutboxEvent
	err    error
}

func newMockOrders() *mockOrders {
	return &mockOrders{orders: map[uuid.UUID]*model.Order{}}
}

func (o *mockOrders) CreateOrder(_ context.Context, order *model.Order, event *model.OutboxEvent) error {
	o.m.Lock()
	defer o.m.Unlock()
	if o.err != nil {
		return o.err
	}
	o.orders[order.ID] = order
	o.events = append(o.events, event)
	return nil
}

func (o *mockOrders) GetOrderByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o.m.Lock()
	defer o.m.Unlock()
	order, ok := o.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (o *mockOrders) ListOrdersByUserID(_ context.Context, userID uuid.UUID) ([]*model.Order, error) {
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

type mockClearer struct {
	cleared  []string
	placedAt []time.Time
	err      error
}

func (c *mockClearer) ClearCart(_ context.Context, userID string, placedAt time.Time) error {
	c.cleared = append(c.cleared, userID)
	c.placedAt = append(c.placedAt, placedAt)
	return c.err
}

type mockUsers struct {
	m     sync.Mutex
	users map[uuid.UUID]*model.User
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: map[uuid.UUID]*model.User{}}
}

func (u *mockUsers) CreateUser(_ context.Context, user *model.User) error {
	u.m.Lock()
	defer u.m.Unlock()
	for _, existing := range u.users {
		if existing.Email == user.Email || (user.Phone != "" && existing.Phone == user.Phone) {
			return repository.ErrDuplicateUser
		}
	}
	cp := *user
	u.users[user.ID] = &cp
	return nil
}

func (u *mockUsers) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u.m.Lock()
	defer u.m.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (u *mockUsers) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	u.m.Lock()
	defer u.m.Unlock()
	for _, user := range u.users {
		if strings.EqualFold(user.Email, login) || user.Phone == login {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (u *mockUsers) UpdateUser(_ context.Context, user *model.User) error {
	u.m.Lock()
	defer u.m.Unlock()
	if _, ok := u.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	u.users[user.ID] = &cp
	return nil
}

type mockTokens struct {
	m      sync.Mutex
	tokens map[string]string
}

func newMockTokens() *mockTokens {
	return &mockTokens{tokens: map[string]string{}}
}

func (t *mockTokens) Issue(_ context.Context, userID string) (string, error) {
	t.m.Lock()
	defer t.m.Unlock()
	token := uuid.NewString()
	t.tokens[token] = userID
	return token, nil
}

func (t *mockTokens) Lookup(_ context.Context, token string) (string, error) {
	t.m.Lock()
	defer t.m.Unlock()
	userID, ok := t.tokens[token]
	if !ok {
		return "", cache.ErrTokenNotFound
	}
	return userID, nil
}

func (t *mockTokens) Revoke(_ context.Context, token string) error {
	t.m.Lock()
	defer t.m.Unlock()
	delete(t.tokens, token)
	return nil
}

type mockSubscribers struct {
	emails map[string]bool
}

func (s *mockSubscribers) AddSubscriber(_ context.Context, email string) error {
	if s.emails[email] {
		return repository.ErrAlreadySubscribed
	}
	s.emails[email] = true
	return nil
}
