package api

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
)

func (c *Client) CreateOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	var confirmation domain.OrderConfirmation
	if err := c.with(token).Post(ctx, "/orders", req, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}
