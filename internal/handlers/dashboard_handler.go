package handlers

import (
	"log"

	"ecofinds/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles HTTP requests for the sustainability dashboard.
type DashboardHandler struct {
	service *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// RegisterRoutes registers the dashboard route with the Fiber app.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/dashboard", authRequired, h.HandleStats)
}

// HandleStats returns the signed-in user's impact summary.
func (h *DashboardHandler) HandleStats(c *fiber.Ctx) error {
	stats, origin, err := h.service.Stats(c.Context())
	if err != nil {
		log.Printf("Error computing dashboard stats: %v", err)
		return errorResponse(c, err, "Could not compute dashboard")
	}
	return c.JSON(fiber.Map{
		"stats":  stats,
		"source": origin.String(),
	})
}
