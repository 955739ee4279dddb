// Package checkout turns the current cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const PaymentMethodCard = "Card"

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderInProgress = errors.New("an order is already being placed")
)

// Form is what the shopper fills in. Card fields are collected for display only and
// never leave the client.
type Form struct {
	Shipping domain.ShippingInfo

	CardNumber string
	CardExpiry string
	CardCVV    string
}

// PrefillShipping copies the user's saved location into empty shipping fields.
func (f *Form) PrefillShipping(user *domain.User) {
	if user == nil {
		return
	}
	fill(&f.Shipping.Name, user.Name)
	if user.Location == nil {
		return
	}
	loc := user.Location
	fill(&f.Shipping.Address, loc.Address)
	fill(&f.Shipping.City, loc.City)
	fill(&f.Shipping.State, loc.State)
	fill(&f.Shipping.Landmark, loc.Landmark)
	fill(&f.Shipping.Pincode, loc.Pincode)
}

func fill(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}

type Cart interface {
	Visible() []domain.CartItem
	Subtotal() decimal.Decimal
	Clear()
}

type Orders interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error)
	Loading() bool
}

type Checkout struct {
	cart   Cart
	orders Orders
	logger *zap.Logger
}

func New(cart Cart, orders Orders, logger *zap.Logger) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{cart: cart, orders: orders, logger: logger}
}

// BuildRequest snapshots the visible cart into an order request.
func (c *Checkout) BuildRequest(form Form) (domain.OrderRequest, error) {
	items := c.cart.Visible()
	if len(items) == 0 {
		return domain.OrderRequest{}, ErrEmptyCart
	}
	total, _ := c.cart.Subtotal().Float64()
	return domain.OrderRequest{
		Items:         items,
		ShippingInfo:  form.Shipping,
		PaymentMethod: PaymentMethodCard,
		TotalAmount:   total,
	}, nil
}

// PlaceOrder submits the cart and clears it once the order is confirmed. A failed
// submission leaves the cart as it was.
func (c *Checkout) PlaceOrder(ctx context.Context, form Form) (*domain.OrderConfirmation, error) {
	if c.orders.Loading() {
		return nil, ErrOrderInProgress
	}

	req, err := c.BuildRequest(form)
	if err != nil {
		return nil, err
	}

	confirmation, err := c.orders.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	c.cart.Clear()
	c.logger.Info("cart cleared after order", zap.String("order_id", confirmation.ID))
	return confirmation, nil
}
