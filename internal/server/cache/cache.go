package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/server/model"
)

type CartCache interface {
	Get(ctx context.Context, userID string) (*model.Cart, error)
	Set(ctx context.Context, userID string, cart *model.Cart) error
	Delete(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrTokenNotFound = errors.New("token not found or expired")
)
