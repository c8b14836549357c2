package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog row. The storefront never mutates products, so the
// package only exposes reads.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
}

// Summary is the denormalized slice of a product other packages embed
// (cart line items, gift-set contents).
type Summary struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
}

func (p Product) Summary() Summary {
	return Summary{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL}
}
