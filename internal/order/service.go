package order

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new order. The item snapshot must already be complete;
// the service only fills defaults (date, status) and validates.
func (s *Service) Create(ord Order) (Order, error) {
	if ord.UserID == uuid.Nil {
		return Order{}, ErrMissingUser
	}
	if len(ord.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if ord.OrderDate.IsZero() {
		ord.OrderDate = time.Now().UTC()
	}
	if ord.Status == "" {
		ord.Status = StatusPending
	}
	if !ord.Status.Valid() {
		return Order{}, ErrInvalidStatus
	}
	return s.repo.Create(ord)
}

func (s *Service) ListByUser(userID uuid.UUID) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) GetByID(userID, orderID uuid.UUID) (Order, error) {
	return s.repo.GetByID(userID, orderID)
}

// GetByPaymentSession looks up the order recorded for a provider payment
// session, if any.
func (s *Service) GetByPaymentSession(sessionID string) (Order, error) {
	return s.repo.GetByPaymentSession(sessionID)
}

// UpdateStatus applies the state machine: the current status must permit
// the transition, otherwise nothing is written.
func (s *Service) UpdateStatus(userID, orderID uuid.UUID, next Status) (Order, error) {
	if !next.Valid() {
		return Order{}, ErrInvalidStatus
	}
	current, err := s.repo.GetByID(userID, orderID)
	if err != nil {
		return Order{}, err
	}
	if !current.Status.CanTransitionTo(next) {
		return Order{}, ErrInvalidTransition
	}
	return s.repo.UpdateStatus(userID, orderID, next)
}

// Cancel is the one transition exposed to shoppers directly.
func (s *Service) Cancel(userID, orderID uuid.UUID) (Order, error) {
	return s.UpdateStatus(userID, orderID, StatusCancelled)
}
