package domain

import "time"

type OrderStatus string

const (
	OrderStatusIdle       OrderStatus = "idle"
	OrderStatusSubmitting OrderStatus = "submitting"
	OrderStatusFulfilled  OrderStatus = "fulfilled"
	OrderStatusFailed     OrderStatus = "failed"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFulfilled || s == OrderStatusFailed
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether an order slot may move from one status to another.
// Submitting is entered from idle or a terminal state; terminal states only from submitting.
func CanTransitionTo(from, to OrderStatus) bool {
	switch to {
	case OrderStatusSubmitting:
		return from == OrderStatusIdle || from.IsTerminal()
	case OrderStatusFulfilled, OrderStatusFailed:
		return from == OrderStatusSubmitting
	case OrderStatusIdle:
		return from.IsTerminal()
	default:
		return false
	}
}

type ShippingInfo struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Landmark string `json:"landmark"`
	Pincode  string `json:"pincode"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Items         []CartItem   `json:"items"`
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	PaymentMethod string       `json:"paymentMethod"`
	TotalAmount   float64      `json:"totalAmount"`
}

// OrderConfirmation is what the service returns for a placed order.
type OrderConfirmation struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	Items         []CartItem   `json:"items,omitempty"`
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	PaymentMethod string       `json:"paymentMethod"`
	TotalAmount   float64      `json:"totalAmount"`
	CreatedAt     time.Time    `json:"createdAt"`
}
