package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("cart item not found")
	ErrBadReference = errors.New("exactly one of productId or giftSetId must be set")
	ErrBadQuantity  = errors.New("quantity must be positive")
)

// ItemRef identifies what a line item points at. Exactly one of the two
// ids is non-nil; the same rule is enforced by a CHECK constraint on the
// cart_items table.
type ItemRef struct {
	ProductID *uuid.UUID `json:"productId,omitempty"`
	GiftSetID *uuid.UUID `json:"giftSetId,omitempty"`
}

func (r ItemRef) Validate() error {
	if (r.ProductID == nil) == (r.GiftSetID == nil) {
		return ErrBadReference
	}
	return nil
}

// Item is one cart line: a reference plus its quantity and the display
// fields joined from the referenced product or gift set at read time.
type Item struct {
	ID uuid.UUID `json:"id"`
	ItemRef
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	Quantity int             `json:"quantity"`
}

// Cart is the materialized view handed to clients: the line items plus the
// derived total, recomputed on every read and never persisted.
type Cart struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Total sums price*quantity over the given items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
