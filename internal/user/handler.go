package user

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenLifetime = 72 * time.Hour

type Handler struct {
	service   *Service
	blacklist TokenBlacklist
	jwtSecret []byte
	log       *zap.Logger
}

func NewHandler(service *Service, blacklist TokenBlacklist, jwtSecret []byte, log *zap.Logger) *Handler {
	return &Handler{service: service, blacklist: blacklist, jwtSecret: jwtSecret, log: log}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/sign-in", h.signIn)
	app.Post("/api/v1/sign-up", h.signUp)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/sign-out", h.signOut)
	app.Get("/api/v1/profile", h.getProfile)
	app.Patch("/api/v1/profile", h.updateProfile)
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	u, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}

	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"email":   u.Email,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		h.log.Error("sign jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"user":  ProjectProfile(u),
		"token": signed,
	})
}

func (h *Handler) signUp(c *fiber.Ctx) error {
	payload := new(signUpRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email and password are required"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created, err := h.service.Register(User{
		Email:     payload.Email,
		Password:  payload.Password,
		FullName:  payload.FullName,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if err == ErrEmailExists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
		}
		h.log.Error("register user", zap.String("email", payload.Email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(ProjectProfile(created))
}

// signOut blacklists the presented token for the rest of its lifetime. The
// client-side cart clear on session loss is purely local, so no cart rows
// are touched here.
func (h *Handler) signOut(c *fiber.Ctx) error {
	tok, err := tokenFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	claims, _ := tok.Claims.(jwt.MapClaims)

	jti, _ := claims["jti"].(string)
	if jti == "" {
		// nothing to revoke for legacy tokens without a jti
		return c.SendStatus(fiber.StatusNoContent)
	}

	ttl := tokenLifetime
	if exp, ok := claims["exp"].(float64); ok {
		ttl = time.Until(time.Unix(int64(exp), 0))
	}

	if err := h.blacklist.Add(c.Context(), jti, ttl); err != nil {
		h.log.Error("blacklist token", zap.String("jti", jti), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "sign out failed"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	u, err := h.service.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}

	return c.JSON(ProjectProfile(u))
}

type profileUpdateRequest struct {
	FullName  *string `json:"fullName,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(profileUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	existing, err := h.service.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}

	if payload.FullName != nil {
		existing.FullName = *payload.FullName
	}
	if payload.AvatarURL != nil {
		existing.AvatarURL = *payload.AvatarURL
	}
	existing.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	updated, err := h.service.Update(userID, existing)
	if err != nil {
		h.log.Error("update profile", zap.String("user_id", userID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(ProjectProfile(updated))
}

// BlacklistMiddleware rejects tokens revoked by sign-out. It must run after
// the JWT middleware has stored the parsed token in c.Locals("user").
func BlacklistMiddleware(blacklist TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, err := tokenFromCtx(c)
		if err != nil {
			// no token on this route; let the route's own auth checks decide
			return c.Next()
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return c.Next()
		}
		jti, _ := claims["jti"].(string)
		if jti == "" {
			return c.Next()
		}
		revoked, err := blacklist.Contains(c.Context(), jti)
		if err != nil {
			// blacklist unavailable: fail closed for mutating verbs only
			if c.Method() != fiber.MethodGet {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "auth unavailable"})
			}
			return c.Next()
		}
		if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "token revoked"})
		}
		return c.Next()
	}
}

func tokenFromCtx(c *fiber.Ctx) (*jwt.Token, error) {
	u := c.Locals("user")
	if u == nil {
		return nil, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return tok, nil
}

// GetUserIDFromCtx extracts the user_id claim from the JWT stored in
// c.Locals("user"). Several packages gate their routes on it, so it lives
// here for reuse.
func GetUserIDFromCtx(c *fiber.Ctx) (uuid.UUID, error) {
	tok, err := tokenFromCtx(c)
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}
