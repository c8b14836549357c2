package order

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func makeApp(handler *Handler) *fiber.App {
	app := fiber.New()
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

func TestOrdersRequireAuth(t *testing.T) {
	handler := NewHandler(NewService(NewInMemoryRepository(nil)), zap.NewNop())
	app := makeApp(handler)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/orders", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestListOrdersReturnsOwnOrders(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))
	handler := NewHandler(service, zap.NewNop())
	app := makeApp(handler)
	userID := uuid.New()

	service.Create(sampleOrder(userID))
	service.Create(sampleOrder(uuid.New()))

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("X-User-ID", userID.String())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].UserID != userID {
		t.Fatalf("expected only the caller's orders")
	}
}

func TestCancelEndpoint(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))
	handler := NewHandler(service, zap.NewNop())
	app := makeApp(handler)
	userID := uuid.New()

	ord, _ := service.Create(sampleOrder(userID))

	req := httptest.NewRequest("POST", "/api/v1/orders/"+ord.ID.String()+"/cancel", nil)
	req.Header.Set("X-User-ID", userID.String())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var cancelled Order
	json.NewDecoder(res.Body).Decode(&cancelled)
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", cancelled.Status)
	}

	// terminal state: cancelling again conflicts
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 on repeat cancel, got %d", res.StatusCode)
	}
}

func TestUpdateStatusEndpointRejectsBadStatus(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))
	handler := NewHandler(service, zap.NewNop())
	app := makeApp(handler)
	userID := uuid.New()

	ord, _ := service.Create(sampleOrder(userID))

	req := httptest.NewRequest("PATCH", "/api/v1/orders/"+ord.ID.String()+"/status", strings.NewReader(`{"status":"Refunded"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for unknown status, got %d", res.StatusCode)
	}
}

func TestGetOrderNotFoundForOtherUser(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))
	handler := NewHandler(service, zap.NewNop())
	app := makeApp(handler)

	ord, _ := service.Create(sampleOrder(uuid.New()))

	req := httptest.NewRequest("GET", "/api/v1/orders/"+ord.ID.String(), nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}
