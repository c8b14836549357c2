package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrMissingUser       = errors.New("order has no owner")
)

// Status is the order lifecycle tag. The happy path moves forward only;
// Cancelled is reachable from Pending and Processing; Delivered and
// Cancelled are terminal.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether the user may still cancel.
func (s Status) Cancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// Item is a purchased line frozen at order time. Price is the
// price-at-purchase, never recomputed from the live catalog.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// Order is a placed purchase. The item snapshot and totals are immutable
// once created; only Status changes afterwards. PaymentSessionID ties an
// order to the provider session that paid for it, so a redelivered
// payment confirmation maps back to the same order.
type Order struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"userId"`
	OrderDate        time.Time       `json:"orderDate"`
	Status           Status          `json:"status"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	ShippingLocation string          `json:"shippingLocation"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentSessionID string          `json:"-"`
	Items            []Item          `json:"items"`
}
