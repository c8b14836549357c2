package cart

import "github.com/google/uuid"

// Service mediates all cart mutations. Every method returns the
// authoritative state from the repository rather than patching a local
// view optimistically.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(userID uuid.UUID) (Cart, error) {
	items, err := s.repo.ListByUser(userID)
	if err != nil {
		return Cart{}, err
	}
	return Cart{Items: items, Total: Total(items)}, nil
}

func (s *Service) Add(userID uuid.UUID, ref ItemRef, qty int) (Item, error) {
	if err := ref.Validate(); err != nil {
		return Item{}, err
	}
	if qty < 1 {
		return Item{}, ErrBadQuantity
	}
	return s.repo.Add(userID, ref, qty)
}

// UpdateQuantity sets the quantity exactly. Values below 1 are a no-op:
// the stored row is returned unchanged.
func (s *Service) UpdateQuantity(userID, itemID uuid.UUID, qty int) (Item, error) {
	if qty < 1 {
		return s.repo.GetItem(userID, itemID)
	}
	return s.repo.UpdateQuantity(userID, itemID, qty)
}

func (s *Service) Remove(userID, itemID uuid.UUID) error {
	return s.repo.Remove(userID, itemID)
}

func (s *Service) Clear(userID uuid.UUID) error {
	return s.repo.Clear(userID)
}
