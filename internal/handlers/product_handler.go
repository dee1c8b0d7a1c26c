package handlers

import (
	"errors"
	"fmt"
	"log"

	"ecofinds/internal/models"
	"ecofinds/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// featuredLimit caps the homepage featured strip.
const featuredLimit = 4

// ProductHandler handles HTTP requests for product listings.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/featured", h.HandleFeatured)
	productRoutes.Get("/mine", authRequired, h.HandleMine)
	productRoutes.Get("/:id", h.HandleGetByID)
	productRoutes.Post("/", authRequired, h.HandleCreate)
	productRoutes.Put("/:id", authRequired, h.HandleUpdate)
	productRoutes.Delete("/:id", authRequired, h.HandleDelete)
}

// HandleList retrieves the full catalog, optionally filtered by the
// "search" or "category" query parameters.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	var (
		products []models.Product
		origin   services.Origin
		err      error
	)
	switch {
	case c.Query("search") != "":
		products, origin, err = h.service.Search(c.Context(), c.Query("search"))
	case c.Query("category") != "":
		products, origin, err = h.service.FilterByCategory(c.Context(), c.Query("category"))
	default:
		products, origin, err = h.service.List(c.Context())
	}
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"products": products,
		"source":   origin.String(),
	})
}

// HandleFeatured retrieves the newest listings for the homepage.
func (h *ProductHandler) HandleFeatured(c *fiber.Ctx) error {
	products, origin, err := h.service.ListFeatured(c.Context(), featuredLimit)
	if err != nil {
		log.Printf("Error listing featured products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve featured products",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"products": products,
		"source":   origin.String(),
	})
}

// HandleMine retrieves the signed-in user's own listings.
func (h *ProductHandler) HandleMine(c *fiber.Ctx) error {
	products, origin, err := h.service.ListMine(c.Context())
	if err != nil {
		log.Printf("Error listing own products: %v", err)
		return errorResponse(c, err, "Could not retrieve your listings")
	}
	return c.JSON(fiber.Map{
		"products": products,
		"source":   origin.String(),
	})
}

// HandleGetByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, origin, err := h.service.GetByID(c.Context(), productID)
	if err != nil {
		log.Printf("Error getting product %s: %v", productID, err)
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", productID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"product": product,
		"source":  origin.String(),
	})
}

// HandleCreate creates a new listing owned by the signed-in user.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	origin, err := h.service.Create(c.Context(), &product)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  validationMessages(validationErrors),
			})
		}
		return errorResponse(c, err, "Could not create product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"product": product,
		"source":  origin.String(),
	})
}

// HandleUpdate updates one of the signed-in user's listings.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = c.Params("id")

	origin, err := h.service.Update(c.Context(), &product)
	if err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  validationMessages(validationErrors),
			})
		}
		return errorResponse(c, err, "Could not update product")
	}

	return c.JSON(fiber.Map{
		"product": product,
		"source":  origin.String(),
	})
}

// HandleDelete removes one of the signed-in user's listings.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	productID := c.Params("id")
	origin, err := h.service.Delete(c.Context(), productID)
	if err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return errorResponse(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", productID),
		"source":  origin.String(),
	})
}
