// Package catalog lists the products a shopper can add to the cart.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

type Service interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Catalog remembers the last listing so lookups by id or name do not refetch.
type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product

	service Service
	logger  *zap.Logger
}

func New(service Service, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{service: service, logger: logger}
}

// Refresh replaces the remembered listing. On failure the previous one stays.
func (c *Catalog) Refresh(ctx context.Context) ([]domain.Product, error) {
	products, err := c.service.ListProducts(ctx)
	if err != nil {
		c.logger.Warn("product listing failed", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
	c.logger.Debug("product listing refreshed", zap.Int("count", len(products)))
	return append([]domain.Product(nil), products...), nil
}

// Products returns the remembered listing, fetching it the first time.
func (c *Catalog) Products(ctx context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	cached := c.products
	c.mu.RUnlock()
	if cached != nil {
		return append([]domain.Product(nil), cached...), nil
	}
	return c.Refresh(ctx)
}

// Find matches ref against product ids first, then case-insensitively against names.
func (c *Catalog) Find(ctx context.Context, ref string) (*domain.Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == ref {
			return &products[i], nil
		}
	}
	for i := range products {
		if strings.EqualFold(products[i].Name, ref) {
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProductNotFound, ref)
}
