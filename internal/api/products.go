package api

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
)

// ListProducts is anonymous; the catalog needs no session.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.with("").Get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}
