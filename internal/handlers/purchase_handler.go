package handlers

import (
	"log"

	"ecofinds/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PurchaseHandler handles HTTP requests for purchase history.
type PurchaseHandler struct {
	service *services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(service *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		service: service,
	}
}

// RegisterRoutes registers the purchase routes with the Fiber app.
func (h *PurchaseHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	purchaseRoutes := router.Group("/purchases", authRequired)
	purchaseRoutes.Get("/", h.HandleList)
	purchaseRoutes.Get("/sales", h.HandleSales)
}

// HandleList retrieves the signed-in user's purchases, newest first.
func (h *PurchaseHandler) HandleList(c *fiber.Ctx) error {
	purchases, origin, err := h.service.ListForUser(c.Context())
	if err != nil {
		log.Printf("Error listing purchases: %v", err)
		return errorResponse(c, err, "Could not retrieve purchases")
	}
	return c.JSON(fiber.Map{
		"purchases": purchases,
		"source":    origin.String(),
	})
}

// HandleSales retrieves purchases where the signed-in user was the seller.
func (h *PurchaseHandler) HandleSales(c *fiber.Ctx) error {
	sales, origin, err := h.service.ListSales(c.Context())
	if err != nil {
		log.Printf("Error listing sales: %v", err)
		return errorResponse(c, err, "Could not retrieve sales")
	}
	return c.JSON(fiber.Map{
		"sales":  sales,
		"source": origin.String(),
	})
}
