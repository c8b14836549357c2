package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"github.com/dufie-skincare/storefront-backend/internal/order"
)

type fakeVerifier struct {
	event stripe.Event
	err   error
}

func (v *fakeVerifier) VerifyWebhook(_ []byte, _ string) (stripe.Event, error) {
	return v.event, v.err
}

func makeApp(handler *Handler) *fiber.App {
	app := fiber.New()
	handler.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			claims := jwt.MapClaims{"user_id": v}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	handler.RegisterProtectedRoutes(app)
	return app
}

func TestCheckoutRequiresAuth(t *testing.T) {
	f := newFixture(t)
	handler := NewHandler(f.service, &fakeVerifier{}, zap.NewNop())
	app := makeApp(handler)

	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestCheckoutEndpointValidation(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 1)
	handler := NewHandler(f.service, &fakeVerifier{}, zap.NewNop())
	app := makeApp(handler)

	body := `{"shippingLocation":"","phone":"+233 24 123 4567","paymentMethod":"card"}`
	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", f.userID.String())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestCheckoutEndpointCashOnDelivery(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 2)
	handler := NewHandler(f.service, &fakeVerifier{}, zap.NewNop())
	app := makeApp(handler)

	body := `{"shippingLocation":"12 Ring Road, Accra","phone":"+233 24 123 4567","paymentMethod":"cod"}`
	req := httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", f.userID.String())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Order == nil || result.Order.Status != order.StatusPending {
		t.Fatalf("expected a pending order in the response")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	handler := NewHandler(f.service, &fakeVerifier{err: errors.New("bad signature")}, zap.NewNop())
	app := makeApp(handler)

	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(`{}`))
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	handler := NewHandler(f.service, &fakeVerifier{event: stripe.Event{Type: "invoice.paid"}}, zap.NewNop())
	app := makeApp(handler)

	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(`{}`))
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	orders, _ := f.orders.ListByUser(f.userID)
	if len(orders) != 0 {
		t.Fatalf("unrelated events must not create orders")
	}
}

func TestWebhookCompletedSessionCreatesOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 2)
	raw := fmt.Sprintf(`{
		"id": "cs_test_123",
		"amount_total": 3700,
		"metadata": {
			"user_id": %q,
			"shipping_location": "12 Ring Road, Accra",
			"items_json": "[{\"id\":\"line-1\",\"name\":\"Shea Body Butter\",\"price\":\"18.5\",\"quantity\":2}]"
		}
	}`, f.userID)
	verifier := &fakeVerifier{event: stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}}
	handler := NewHandler(f.service, verifier, zap.NewNop())
	app := makeApp(handler)

	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	orders, _ := f.orders.ListByUser(f.userID)
	if len(orders) != 1 {
		t.Fatalf("expected one paid order, got %d", len(orders))
	}
	if orders[0].PaymentMethod != "Credit Card" {
		t.Fatalf("unexpected payment method %q", orders[0].PaymentMethod)
	}

	c, _ := f.carts.Get(f.userID)
	if len(c.Items) != 0 {
		t.Fatalf("webhook must clear the buyer's cart")
	}
}

func TestWebhookRedeliveryCreatesNoDuplicateOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 2)
	raw := fmt.Sprintf(`{
		"id": "cs_test_123",
		"amount_total": 3700,
		"metadata": {
			"user_id": %q,
			"shipping_location": "12 Ring Road, Accra",
			"items_json": "[{\"id\":\"line-1\",\"name\":\"Shea Body Butter\",\"price\":\"18.5\",\"quantity\":2}]"
		}
	}`, f.userID)
	verifier := &fakeVerifier{event: stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}}
	handler := NewHandler(f.service, verifier, zap.NewNop())
	app := makeApp(handler)

	// the provider retries until it sees 2xx, so the same event arrives
	// more than once
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(`{}`))
		req.Header.Set("Stripe-Signature", "t=1,v1=sig")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
		if res.StatusCode != fiber.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d", i+1, res.StatusCode)
		}
	}

	orders, _ := f.orders.ListByUser(f.userID)
	if len(orders) != 1 {
		t.Fatalf("expected one order after redelivery, got %d", len(orders))
	}
}
