package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/cache"
	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/fjod/go_storefront/internal/server/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog repository.CatalogRepository
	glyph   string
	logger  *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, catalog repository.CatalogRepository, glyph string, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
		glyph:   glyph,
		logger:  logger,
	}
}

// GetCart returns the stored cart, or an empty one if the user never added anything.
func (s *CartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (any, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("user_id", userID), zap.Error(err))
		}

		cart, err = s.repo.GetCart(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			now := time.Now().UTC()
			return &model.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}
		if err != nil {
			return nil, err
		}

		// written before returning so a following invalidation cannot be overtaken
		if err := s.cache.Set(ctx, userID, cart); err != nil {
			s.logger.Warn("cache set failed", zap.String("user_id", userID), zap.Error(err))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Cart), nil
}

// View joins the stored lines with the catalog. Lines whose product has left the
// catalog are dropped.
func (s *CartService) View(ctx context.Context, userID string) ([]domain.CartItem, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if errors.Is(err, repository.ErrProductNotFound) {
			s.logger.Info("dropping cart line for unknown product", zap.String("product_id", line.ProductID))
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, domain.CartItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    domain.FormatAmount(s.glyph, product.Price),
			Image:    product.Image,
			Quantity: line.Quantity,
		})
	}
	return items, nil
}

// AddItem adds quantity of productID. An existing line is merged and capped at
// model.MaxLineQuantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) ([]domain.CartItem, error) {
	if productID == "" {
		return nil, invalid("productId", "is required")
	}
	if quantity < 1 || quantity > model.MaxLineQuantity {
		return nil, invalid("quantity", "must be between 1 and %d", model.MaxLineQuantity)
	}
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.repo.AddItem(ctx, userID, productID, quantity, model.MaxLineQuantity); err != nil {
		s.logger.Error("repo add item failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("add item: %w", err)
	}
	s.invalidateCache(userID)
	return s.View(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) ([]domain.CartItem, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		if !errors.Is(err, repository.ErrItemNotFound) {
			s.logger.Error("repo remove item failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}
	s.invalidateCache(userID)
	return s.View(ctx, userID)
}

// ClearCart empties the cart an order was placed from. A cart changed at or after
// placedAt holds lines the order never saw and is left alone.
func (s *CartService) ClearCart(ctx context.Context, userID string, placedAt time.Time) error {
	err := s.repo.DeleteCart(ctx, userID, placedAt)
	if errors.Is(err, repository.ErrCartNotFound) {
		s.logger.Debug("no cart to clear", zap.String("user_id", userID), zap.Time("placed_at", placedAt))
		return nil
	}
	if err != nil {
		s.logger.Error("repo delete cart failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
