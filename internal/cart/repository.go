package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	ListByUser(userID uuid.UUID) ([]Item, error)
	GetItem(userID, itemID uuid.UUID) (Item, error)
	// Add increments the existing line for the same reference or inserts a
	// new one. The increment is atomic at the store level so concurrent
	// adds sum instead of racing.
	Add(userID uuid.UUID, ref ItemRef, qty int) (Item, error)
	UpdateQuantity(userID, itemID uuid.UUID, qty int) (Item, error)
	Remove(userID, itemID uuid.UUID) error
	Clear(userID uuid.UUID) error
}

// CatalogEntry carries the display fields the in-memory repository joins
// onto line items, standing in for the SQL join against products and
// gift_sets.
type CatalogEntry struct {
	Name     string
	Price    decimal.Decimal
	ImageURL string
}

// InMemoryRepository backs tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.Mutex
	items    map[uuid.UUID][]Item // keyed by user id
	products map[uuid.UUID]CatalogEntry
	giftSets map[uuid.UUID]CatalogEntry
}

func NewInMemoryRepository(products, giftSets map[uuid.UUID]CatalogEntry) *InMemoryRepository {
	if products == nil {
		products = map[uuid.UUID]CatalogEntry{}
	}
	if giftSets == nil {
		giftSets = map[uuid.UUID]CatalogEntry{}
	}
	return &InMemoryRepository{
		items:    map[uuid.UUID][]Item{},
		products: products,
		giftSets: giftSets,
	}
}

func (r *InMemoryRepository) ListByUser(userID uuid.UUID) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Item, len(r.items[userID]))
	copy(out, r.items[userID])
	return out, nil
}

func (r *InMemoryRepository) GetItem(userID, itemID uuid.UUID) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.items[userID] {
		if it.ID == itemID {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

func (r *InMemoryRepository) Add(userID uuid.UUID, ref ItemRef, qty int) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.lookup(ref)
	if err != nil {
		return Item{}, err
	}

	items := r.items[userID]
	for i, it := range items {
		if sameRef(it.ItemRef, ref) {
			items[i].Quantity += qty
			return items[i], nil
		}
	}

	item := Item{
		ID:       uuid.New(),
		ItemRef:  ref,
		Name:     entry.Name,
		Price:    entry.Price,
		ImageURL: entry.ImageURL,
		Quantity: qty,
	}
	r.items[userID] = append(items, item)
	return item, nil
}

func (r *InMemoryRepository) UpdateQuantity(userID, itemID uuid.UUID, qty int) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[userID]
	for i, it := range items {
		if it.ID == itemID {
			items[i].Quantity = qty
			return items[i], nil
		}
	}
	return Item{}, ErrNotFound
}

func (r *InMemoryRepository) Remove(userID, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[userID]
	for i, it := range items {
		if it.ID == itemID {
			r.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Clear(userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, userID)
	return nil
}

func (r *InMemoryRepository) lookup(ref ItemRef) (CatalogEntry, error) {
	if ref.ProductID != nil {
		if entry, ok := r.products[*ref.ProductID]; ok {
			return entry, nil
		}
		return CatalogEntry{}, ErrNotFound
	}
	if ref.GiftSetID != nil {
		if entry, ok := r.giftSets[*ref.GiftSetID]; ok {
			return entry, nil
		}
		return CatalogEntry{}, ErrNotFound
	}
	return CatalogEntry{}, ErrBadReference
}

func sameRef(a, b ItemRef) bool {
	switch {
	case a.ProductID != nil && b.ProductID != nil:
		return *a.ProductID == *b.ProductID
	case a.GiftSetID != nil && b.GiftSetID != nil:
		return *a.GiftSetID == *b.GiftSetID
	default:
		return false
	}
}
