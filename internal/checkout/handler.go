package checkout

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"github.com/dufie-skincare/storefront-backend/internal/user"
)

// Verifier checks the payment provider's webhook signature.
type Verifier interface {
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
}

type Handler struct {
	service  *Service
	verifier Verifier
	log      *zap.Logger
}

func NewHandler(service *Service, verifier Verifier, log *zap.Logger) *Handler {
	return &Handler{service: service, verifier: verifier, log: log}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
}

// RegisterPublicRoutes mounts the webhook. The provider authenticates
// with a signature header, not a bearer token.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/stripe/webhook", h.webhook)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(Request)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	result, err := h.service.Checkout(c.UserContext(), userID, *payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrEmptyCart):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "cart is empty"})
		default:
			h.log.Error("checkout", zap.String("user_id", userID.String()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "checkout failed"})
		}
	}
	return c.JSON(result)
}

func (h *Handler) webhook(c *fiber.Ctx) error {
	event, err := h.verifier.VerifyWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.log.Warn("webhook signature rejected", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid signature"})
	}

	if event.Type != "checkout.session.completed" {
		return c.SendStatus(fiber.StatusOK)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.log.Error("decode webhook session", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "malformed event"})
	}

	userID, err := uuid.Parse(sess.Metadata["user_id"])
	if err != nil {
		h.log.Error("webhook session missing user", zap.String("session_id", sess.ID))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing user metadata"})
	}

	ord, err := h.service.CompletePayment(userID, sess.ID, sess.Metadata["shipping_location"], sess.Metadata["items_json"], sess.AmountTotal)
	if err != nil {
		h.log.Error("record paid order",
			zap.String("session_id", sess.ID),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to record order"})
	}

	h.log.Info("paid order recorded",
		zap.String("session_id", sess.ID),
		zap.String("order_id", ord.ID.String()))
	return c.SendStatus(fiber.StatusOK)
}
