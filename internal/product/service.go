package product

import "github.com/google/uuid"

// ServiceInterface is what other packages (cart, checkout, gift sets)
// depend on instead of the concrete service.
type ServiceInterface interface {
	List(f Filter) ([]Product, error)
	GetByID(id uuid.UUID) (Product, error)
	ListByIDs(ids []uuid.UUID) ([]Product, error)
	Categories() ([]string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) List(f Filter) ([]Product, error) {
	return s.repo.List(f)
}

func (s *Service) GetByID(id uuid.UUID) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []uuid.UUID) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) Categories() ([]string, error) {
	return s.repo.Categories()
}
