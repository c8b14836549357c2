package giftset

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service ServiceInterface
	log     *zap.Logger
}

func NewHandler(service ServiceInterface, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/gift-sets", h.getGiftSets)
	app.Get("/api/v1/gift-sets/:id", h.getGiftSet)
}

func (h *Handler) getGiftSets(c *fiber.Ctx) error {
	sets, err := h.service.List()
	if err != nil {
		h.log.Error("list gift sets", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(sets)
}

func (h *Handler) getGiftSet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid gift set id"})
	}

	g, err := h.service.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "gift set not found"})
		}
		h.log.Error("get gift set", zap.String("id", id.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(g)
}
