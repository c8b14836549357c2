package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dufie-skincare/storefront-backend/internal/cart"
	"github.com/dufie-skincare/storefront-backend/internal/order"
	"github.com/dufie-skincare/storefront-backend/internal/payment"
)

var (
	ErrEmptyCart  = errors.New("checkout: cart is empty")
	ErrValidation = errors.New("checkout: invalid request")
)

const (
	MethodCard = "card"
	MethodCOD  = "cod"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,}$`)

// Gateway is the hosted payment provider. Only the card path touches it.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, in payment.SessionInput) (payment.Session, error)
}

// Request is the checkout form. Shipping and phone are validated before
// any external call is made.
type Request struct {
	ShippingLocation string `json:"shippingLocation" validate:"required"`
	Phone            string `json:"phone" validate:"required,phone"`
	PaymentMethod    string `json:"paymentMethod" validate:"required,oneof=card cod"`
}

// Result is returned to the client. For a card checkout Session carries
// the redirect URL and Order is nil; for cash on delivery it is the
// other way round. CartCleared reports whether the cart rows are gone:
// false on the card path (the webhook clears them after payment) and
// false on the rare cash order whose post-insert clear failed.
type Result struct {
	Session     *payment.Session `json:"session,omitempty"`
	Order       *order.Order     `json:"order,omitempty"`
	CartCleared bool             `json:"cartCleared"`
}

type Service struct {
	carts    *cart.Service
	orders   *order.Service
	gateway  Gateway
	validate *validator.Validate
	log      *zap.Logger
}

func NewService(carts *cart.Service, orders *order.Service, gateway Gateway, log *zap.Logger) *Service {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Service{carts: carts, orders: orders, gateway: gateway, validate: v, log: log}
}

func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, req Request) (Result, error) {
	if err := s.validate.Struct(req); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	c, err := s.carts.Get(userID)
	if err != nil {
		return Result{}, err
	}
	if len(c.Items) == 0 {
		return Result{}, ErrEmptyCart
	}

	switch req.PaymentMethod {
	case MethodCard:
		return s.checkoutCard(ctx, userID, req, c)
	default:
		return s.checkoutCOD(userID, req, c)
	}
}

// checkoutCard hands the cart snapshot to the payment provider and leaves
// the cart untouched. The webhook clears it once payment confirms.
func (s *Service) checkoutCard(ctx context.Context, userID uuid.UUID, req Request, c cart.Cart) (Result, error) {
	items := orderItems(c.Items)
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return Result{}, err
	}

	lines := make([]payment.LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, payment.LineItem{
			Name:       it.Name,
			UnitAmount: it.Price.Mul(centsPerUnit).Round(0).IntPart(),
			Quantity:   int64(it.Quantity),
		})
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionInput{
		Items:            lines,
		UserID:           userID.String(),
		ShippingLocation: req.ShippingLocation,
		ItemsJSON:        string(itemsJSON),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Session: &sess}, nil
}

// checkoutCOD records the order immediately and clears the cart. A clear
// failure after the insert is reported through Result.CartCleared rather
// than failing the whole checkout, since the order already exists.
func (s *Service) checkoutCOD(userID uuid.UUID, req Request, c cart.Cart) (Result, error) {
	ord, err := s.orders.Create(order.Order{
		UserID:           userID,
		Status:           order.StatusPending,
		TotalPrice:       c.Total,
		ShippingLocation: req.ShippingLocation,
		PaymentMethod:    "Cash on Delivery",
		Items:            orderItems(c.Items),
	})
	if err != nil {
		return Result{}, err
	}

	cleared := true
	if err := s.carts.Clear(userID); err != nil {
		s.log.Error("clear cart after order", zap.String("order_id", ord.ID.String()), zap.Error(err))
		cleared = false
	}
	return Result{Order: &ord, CartCleared: cleared}, nil
}

// CompletePayment is driven by the provider webhook once a card payment
// succeeds. It records the paid order from the session metadata and
// clears the buyer's cart. The provider redelivers events until it sees
// success, so a session that already has an order is returned as-is
// instead of being recorded twice.
func (s *Service) CompletePayment(userID uuid.UUID, sessionID, shippingLocation, itemsJSON string, total int64) (order.Order, error) {
	if sessionID != "" {
		existing, err := s.orders.GetByPaymentSession(sessionID)
		if err == nil {
			s.log.Info("payment session already recorded",
				zap.String("session_id", sessionID),
				zap.String("order_id", existing.ID.String()))
			return existing, nil
		}
		if err != order.ErrNotFound {
			return order.Order{}, err
		}
	}

	var items []order.Item
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return order.Order{}, fmt.Errorf("checkout: decode session items: %w", err)
	}

	ord, err := s.orders.Create(order.Order{
		UserID:           userID,
		Status:           order.StatusPending,
		TotalPrice:       centsToDecimal(total),
		ShippingLocation: shippingLocation,
		PaymentMethod:    "Credit Card",
		PaymentSessionID: sessionID,
		Items:            items,
	})
	if err != nil {
		return order.Order{}, err
	}
	if err := s.carts.Clear(userID); err != nil {
		s.log.Error("clear cart after payment", zap.String("order_id", ord.ID.String()), zap.Error(err))
	}
	return ord, nil
}

func orderItems(items []cart.Item) []order.Item {
	out := make([]order.Item, 0, len(items))
	for _, it := range items {
		out = append(out, order.Item{
			ID:       it.ID.String(),
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			ImageURL: it.ImageURL,
		})
	}
	return out
}
