package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/google/uuid"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrProductNotFound   = errors.New("product not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUser     = errors.New("a user with this email or phone already exists")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

// CartRepository is implemented by the Mongo store. Consumers define what they need
// from it; this is the full surface.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity, maxQuantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	DeleteCart(ctx context.Context, userID string, before time.Time) error
}

type CatalogRepository interface {
	GetAllProducts(ctx context.Context) ([]*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByLogin(ctx context.Context, emailOrPhone string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order, event *model.OutboxEvent) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type SubscriberRepository interface {
	AddSubscriber(ctx context.Context, email string) error
}
