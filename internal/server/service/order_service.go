package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// totalTolerance is how far the client's total may drift from the recomputed one
// before it is logged.
var totalTolerance = decimal.New(1, -2)

type CartClearer interface {
	ClearCart(ctx context.Context, userID string, placedAt time.Time) error
}

type OrderService struct {
	orders  repository.OrderRepository
	catalog repository.CatalogRepository
	carts   CartClearer
	glyph   string
	logger  *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, catalog repository.CatalogRepository, carts CartClearer, glyph string, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:  orders,
		catalog: catalog,
		carts:   carts,
		glyph:   glyph,
		logger:  logger,
	}
}

// PlaceOrder prices the request against the catalog, stores the order together with
// its order.placed event and empties the user's cart.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req domain.OrderRequest) (*model.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	items, total, err := s.price(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if claimed := decimal.NewFromFloat(req.TotalAmount); claimed.Sub(total).Abs().GreaterThan(totalTolerance) {
		s.logger.Info("client total differs from catalog total",
			zap.String("user_id", userID.String()),
			zap.String("claimed", claimed.StringFixed(2)),
			zap.String("computed", total.StringFixed(2)))
	}

	placedAt := time.Now().UTC()
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Items:         items,
		ShippingInfo:  req.ShippingInfo,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   total,
		Status:        model.OrderStatusPlaced,
	}

	payload, err := json.Marshal(map[string]any{
		"order_id":       order.ID,
		"user_id":        userID,
		"items":          items,
		"total_amount":   total.StringFixed(2),
		"payment_method": order.PaymentMethod,
		"placed_at":      placedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}
	event := &model.OutboxEvent{
		AggregateID: order.ID.String(),
		EventType:   model.EventOrderPlaced,
		Payload:     payload,
	}

	if err := s.orders.CreateOrder(ctx, order, event); err != nil {
		s.logger.Error("create order failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	// the order stands even if the cart survives; the client clears its own copy
	if err := s.carts.ClearCart(ctx, userID.String(), placedAt); err != nil {
		s.logger.Warn("clear cart after order failed", zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(items)),
		zap.String("total", total.StringFixed(2)))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	return s.orders.ListOrdersByUserID(ctx, userID)
}

func (s *OrderService) price(ctx context.Context, lines []domain.CartItem) ([]domain.CartItem, decimal.Decimal, error) {
	items := make([]domain.CartItem, 0, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		if line.Quantity < 1 || line.Quantity > model.MaxLineQuantity {
			return nil, decimal.Zero, invalid(fmt.Sprintf("items[%d].quantity", i), "must be between 1 and %d", model.MaxLineQuantity)
		}
		product, err := s.catalog.GetProduct(ctx, line.ID)
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, decimal.Zero, invalid(fmt.Sprintf("items[%d].id", i), "unknown product %q", line.ID)
		}
		if err != nil {
			return nil, decimal.Zero, err
		}
		items = append(items, domain.CartItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    domain.FormatAmount(s.glyph, product.Price),
			Image:    product.Image,
			Quantity: line.Quantity,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return items, total, nil
}

func validateOrderRequest(req domain.OrderRequest) error {
	if len(req.Items) == 0 {
		return invalid("items", "order has no items")
	}
	required := []struct{ field, value string }{
		{"shippingInfo.name", req.ShippingInfo.Name},
		{"shippingInfo.address", req.ShippingInfo.Address},
		{"shippingInfo.city", req.ShippingInfo.City},
		{"shippingInfo.pincode", req.ShippingInfo.Pincode},
		{"paymentMethod", req.PaymentMethod},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "is required")
		}
	}
	return nil
}
