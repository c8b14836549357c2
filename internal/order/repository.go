package order

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ord Order) (Order, error)
	// ListByUser returns the user's orders newest-first by order date.
	ListByUser(userID uuid.UUID) ([]Order, error)
	GetByID(userID, orderID uuid.UUID) (Order, error)
	GetByPaymentSession(sessionID string) (Order, error)
	UpdateStatus(userID, orderID uuid.UUID, status Status) (Order, error)
}

type InMemoryRepository struct {
	mu     sync.Mutex
	orders []Order
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make([]Order, 0, len(seed))}
	r.orders = append(r.orders, seed...)
	return r
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ord.ID == uuid.Nil {
		ord.ID = uuid.New()
	}
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) ListByUser(userID uuid.UUID) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(userID, orderID uuid.UUID) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) GetByPaymentSession(sessionID string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sessionID == "" {
		return Order{}, ErrNotFound
	}
	for _, o := range r.orders {
		if o.PaymentSessionID == sessionID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) UpdateStatus(userID, orderID uuid.UUID, status Status) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			r.orders[i].Status = status
			return r.orders[i], nil
		}
	}
	return Order{}, ErrNotFound
}
