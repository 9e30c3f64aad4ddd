package handlers

import (
	"time"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TopicHeader names the change the commerce backend is reporting.
const TopicHeader = "x-commerce-topic"

// RevalidateHandler receives cache revalidation webhooks.
type RevalidateHandler struct {
	service *services.RevalidationService
	log     *zap.Logger
}

// NewRevalidateHandler creates a new RevalidateHandler.
func NewRevalidateHandler(service *services.RevalidationService, log *zap.Logger) *RevalidateHandler {
	return &RevalidateHandler{service: service, log: log}
}

// RegisterRoutes registers the webhook route with the Fiber app.
func (h *RevalidateHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/api/revalidate", h.HandleRevalidate)
}

// HandleRevalidate always answers 200 so the sender does not retry; only a
// recognized topic with the right secret drops cached data.
func (h *RevalidateHandler) HandleRevalidate(c *fiber.Ctx) error {
	revalidated, err := h.service.Revalidate(c.UserContext(), c.Query("secret"), c.Get(TopicHeader))
	if err != nil {
		h.log.Error("revalidation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not revalidate",
			"error":   err.Error(),
		})
	}
	if !revalidated {
		return c.JSON(fiber.Map{"status": fiber.StatusOK})
	}
	return c.JSON(fiber.Map{
		"status":      fiber.StatusOK,
		"revalidated": true,
		"now":         time.Now().UnixMilli(),
	})
}
