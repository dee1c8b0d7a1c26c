package handlers

import (
	"errors"
	"log"

	"ecofinds/internal/models"
	"ecofinds/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. Every cart
// route requires a signed-in user.
func (h *CartHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	cartRoutes := router.Group("/cart", authRequired)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleSetQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

// HandleGetCart retrieves the cart with its running total.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, origin, err := h.service.Items(c.Context())
	if err != nil {
		log.Printf("Error loading cart: %v", err)
		return errorResponse(c, err, "Could not retrieve cart")
	}
	return c.JSON(fiber.Map{
		"items":  items,
		"total":  h.service.Total(),
		"source": origin.String(),
	})
}

// AddItemRequest represents the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

// HandleAddItem puts a product in the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id is required",
		})
	}

	item, origin, err := h.service.Add(c.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyInCart) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Item is already in your cart",
			})
		}
		log.Printf("Error adding product %s to cart: %v", req.ProductID, err)
		return errorResponse(c, err, "Could not add item to cart")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"item":   item,
		"source": origin.String(),
	})
}

// SetQuantityRequest represents the request body for changing an item's
// quantity. A quantity of zero or less removes the item.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleSetQuantity changes the quantity of one cart item.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	itemID := c.Params("id")
	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing quantity body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	origin, err := h.service.SetQuantity(c.Context(), itemID, req.Quantity)
	if err != nil {
		log.Printf("Error updating cart item %s: %v", itemID, err)
		return errorResponse(c, err, "Could not update cart item")
	}

	return c.JSON(fiber.Map{
		"message": "Cart updated",
		"total":   h.service.Total(),
		"source":  origin.String(),
	})
}

// HandleRemoveItem deletes one item from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	itemID := c.Params("id")
	origin, err := h.service.Remove(c.Context(), itemID)
	if err != nil {
		log.Printf("Error removing cart item %s: %v", itemID, err)
		return errorResponse(c, err, "Could not remove cart item")
	}
	return c.JSON(fiber.Map{
		"message": "Item removed",
		"total":   h.service.Total(),
		"source":  origin.String(),
	})
}

// HandleCheckout converts the cart into purchase records.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	purchases, origin, err := h.service.Checkout(c.Context())
	if err != nil {
		log.Printf("Error during checkout: %v", err)
		return errorResponse(c, err, "Checkout failed")
	}
	if len(purchases) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Your cart is empty",
		})
	}
	return c.JSON(fiber.Map{
		"message":   "Checkout complete",
		"purchases": purchases,
		"source":    origin.String(),
	})
}
