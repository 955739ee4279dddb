// Package model holds the records the storefront service persists.
package model

import (
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of one cart line.
const MaxLineQuantity = 99

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartLine `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartLine struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Line returns the line for productID, or nil.
func (c *Cart) Line(productID string) *CartLine {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	CreatedAt   time.Time
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	Image        string
	Location     *domain.Location
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public strips what never leaves the service.
func (u *User) Public() domain.User {
	out := domain.User{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Image: u.Image,
		Role:  u.Role,
	}
	if u.Location != nil {
		loc := *u.Location
		out.Location = &loc
	}
	return out
}

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Items         []domain.CartItem
	ShippingInfo  domain.ShippingInfo
	PaymentMethod string
	TotalAmount   decimal.Decimal
	Status        OrderStatus
	CreatedAt     time.Time
}

// Confirmation is the order as the client sees it.
func (o *Order) Confirmation() domain.OrderConfirmation {
	total, _ := o.TotalAmount.Float64()
	return domain.OrderConfirmation{
		ID:            o.ID.String(),
		Status:        string(o.Status),
		Items:         o.Items,
		ShippingInfo:  o.ShippingInfo,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   total,
		CreatedAt:     o.CreatedAt,
	}
}

const EventOrderPlaced = "order.placed"

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}
