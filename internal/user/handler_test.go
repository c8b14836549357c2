package user

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-signing-secret"

// makeApp injects claims from headers so tests can exercise protected
// routes without the full jwtware stack. X-User-ID sets user_id; X-JTI
// adds the revocation id and a far-future expiry.
func makeApp(handler *Handler, blacklist TokenBlacklist) *fiber.App {
	app := fiber.New()
	handler.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			claims := jwt.MapClaims{"user_id": v}
			if jti := c.Get("X-JTI"); jti != "" {
				claims["jti"] = jti
				claims["exp"] = float64(time.Now().Add(time.Hour).Unix())
			}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	app.Use(BlacklistMiddleware(blacklist))
	handler.RegisterProtectedRoutes(app)
	return app
}

func newHandler(t *testing.T, seed []User) (*Handler, *Service, *MemoryBlacklist) {
	t.Helper()
	service := NewService(NewInMemoryRepository(seed))
	blacklist := NewMemoryBlacklist()
	return NewHandler(service, blacklist, []byte(testSecret), zap.NewNop()), service, blacklist
}

func TestSignUpThenSignIn(t *testing.T) {
	handler, _, blacklist := newHandler(t, nil)
	app := makeApp(handler, blacklist)

	body := `{"email":"ama@example.com","password":"s3cret-pass","fullName":"Ama Mensah"}`
	req := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Name != "Ama Mensah" {
		t.Fatalf("expected projected name, got %q", profile.Name)
	}

	req = httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"ama@example.com","password":"s3cret-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var signed struct {
		Token string  `json:"token"`
		User  Profile `json:"user"`
	}
	if err := json.NewDecoder(res.Body).Decode(&signed); err != nil {
		t.Fatalf("decode sign-in response: %v", err)
	}
	if signed.Token == "" {
		t.Fatalf("expected a token")
	}

	tok, err := jwt.Parse(signed.Token, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["user_id"] != signed.User.ID.String() {
		t.Fatalf("token subject mismatch")
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Fatalf("expected a jti claim for revocation")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	handler, service, blacklist := newHandler(t, nil)
	app := makeApp(handler, blacklist)

	service.Register(User{Email: "ama@example.com", Password: "right-pass"})

	req := httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"ama@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	handler, service, blacklist := newHandler(t, nil)
	app := makeApp(handler, blacklist)

	service.Register(User{Email: "ama@example.com", Password: "pass"})

	req := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(`{"email":"ama@example.com","password":"other"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", res.StatusCode)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	userID := uuid.New()
	handler, _, blacklist := newHandler(t, []User{{ID: userID, Email: "ama@example.com"}})
	app := makeApp(handler, blacklist)

	jti := uuid.NewString()
	req := httptest.NewRequest("POST", "/api/v1/sign-out", nil)
	req.Header.Set("X-User-ID", userID.String())
	req.Header.Set("X-JTI", jti)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}

	// same token is now rejected by the revocation middleware
	req = httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-User-ID", userID.String())
	req.Header.Set("X-JTI", jti)
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("profile after sign out: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %d", res.StatusCode)
	}
}

func TestProfileRoutes(t *testing.T) {
	userID := uuid.New()
	seed := []User{{ID: userID, Email: "ama@example.com", FullName: "Ama Mensah", AvatarURL: "/ama.jpg"}}
	handler, _, blacklist := newHandler(t, seed)
	app := makeApp(handler, blacklist)

	// unauthenticated
	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/profile", nil))
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	// read
	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-User-ID", userID.String())
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var profile Profile
	json.NewDecoder(res.Body).Decode(&profile)
	if profile.Name != "Ama Mensah" || profile.AvatarURL != "/ama.jpg" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	// update
	req = httptest.NewRequest("PATCH", "/api/v1/profile", strings.NewReader(`{"fullName":"Ama A. Mensah"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	json.NewDecoder(res.Body).Decode(&profile)
	if profile.Name != "Ama A. Mensah" {
		t.Fatalf("expected updated name, got %q", profile.Name)
	}
	if profile.AvatarURL != "/ama.jpg" {
		t.Fatalf("avatar must survive a partial update, got %q", profile.AvatarURL)
	}
}
