package api

import (
	"context"
	"net/url"

	"github.com/fjod/go_storefront/internal/domain"
)

type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context, token string) (*domain.CartPayload, error) {
	var payload domain.CartPayload
	if err := c.with(token).Get(ctx, "/cart", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) AddToCart(ctx context.Context, token, productID string, quantity int) (*domain.CartPayload, error) {
	var payload domain.CartPayload
	req := AddItemRequest{ProductID: productID, Quantity: quantity}
	if err := c.with(token).Post(ctx, "/cart", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, token, itemID string) (*domain.CartPayload, error) {
	var payload domain.CartPayload
	if err := c.with(token).Delete(ctx, "/cart/"+url.PathEscape(itemID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
