package giftset

import (
	"github.com/dufie-skincare/storefront-backend/internal/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GiftSet bundles products at a fixed combined price. OriginalPrice is the
// reference sum shoppers compare the set price against; set_price <=
// original_price is expected but not enforced.
type GiftSet struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	SetPrice      decimal.Decimal   `json:"setPrice"`
	OriginalPrice decimal.Decimal   `json:"originalPrice"`
	Rating        float64           `json:"rating"`
	ImageURL      string            `json:"imageUrl"`
	ProductIDs    []uuid.UUID       `json:"-"`
	Products      []product.Summary `json:"products,omitempty"`
}

// Savings is the percentage discount relative to the original price,
// rounded to a whole percent. Zero when the original price is not positive.
func (g GiftSet) Savings() int64 {
	if !g.OriginalPrice.IsPositive() {
		return 0
	}
	diff := g.OriginalPrice.Sub(g.SetPrice)
	return diff.Div(g.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
