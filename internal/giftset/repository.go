package giftset

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("gift set not found")

type Repository interface {
	List() ([]GiftSet, error)
	GetByID(id uuid.UUID) (GiftSet, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []GiftSet
}

func NewInMemoryRepository(seed []GiftSet) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]GiftSet, 0, len(seed))}
	r.storage = append(r.storage, seed...)
	return r
}

func (r *InMemoryRepository) List() ([]GiftSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]GiftSet, len(r.storage))
	copy(out, r.storage)
	return out, nil
}

func (r *InMemoryRepository) GetByID(id uuid.UUID) (GiftSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.storage {
		if g.ID == id {
			return g, nil
		}
	}
	return GiftSet{}, ErrNotFound
}
