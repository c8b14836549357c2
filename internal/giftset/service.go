package giftset

import (
	"github.com/dufie-skincare/storefront-backend/internal/product"
	"github.com/google/uuid"
)

// ServiceInterface is the read surface other packages depend on.
type ServiceInterface interface {
	List() ([]GiftSet, error)
	GetByID(id uuid.UUID) (GiftSet, error)
}

// Service resolves gift sets and their constituent product summaries at
// read time, so the stored rows stay a plain list of product ids.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) List() ([]GiftSet, error) {
	sets, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	for i := range sets {
		if err := s.resolve(&sets[i]); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

func (s *Service) GetByID(id uuid.UUID) (GiftSet, error) {
	g, err := s.repo.GetByID(id)
	if err != nil {
		return GiftSet{}, err
	}
	if err := s.resolve(&g); err != nil {
		return GiftSet{}, err
	}
	return g, nil
}

func (s *Service) resolve(g *GiftSet) error {
	if len(g.ProductIDs) == 0 {
		return nil
	}
	products, err := s.products.ListByIDs(g.ProductIDs)
	if err != nil {
		return err
	}
	g.Products = make([]product.Summary, 0, len(products))
	for _, p := range products {
		g.Products = append(g.Products, p.Summary())
	}
	return nil
}
