package handlers

import (
	"errors"
	"log"

	"ecofinds/internal/models"
	"ecofinds/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles HTTP requests for the user profile.
type ProfileHandler struct {
	service *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// RegisterRoutes registers the profile routes with the Fiber app.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	profileRoutes := router.Group("/profile", authRequired)
	profileRoutes.Get("/", h.HandleGet)
	profileRoutes.Put("/", h.HandleUpdate)
}

// HandleGet retrieves the signed-in user's profile.
func (h *ProfileHandler) HandleGet(c *fiber.Ctx) error {
	profile, origin, err := h.service.Get(c.Context())
	if err != nil {
		log.Printf("Error loading profile: %v", err)
		return errorResponse(c, err, "Could not retrieve profile")
	}
	return c.JSON(fiber.Map{
		"profile": profile,
		"source":  origin.String(),
	})
}

// HandleUpdate saves the signed-in user's profile.
func (h *ProfileHandler) HandleUpdate(c *fiber.Ctx) error {
	var profile models.Profile
	if err := c.BodyParser(&profile); err != nil {
		log.Printf("Error parsing profile body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	origin, err := h.service.Update(c.Context(), &profile)
	if err != nil {
		log.Printf("Error saving profile: %v", err)
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  validationMessages(validationErrors),
			})
		}
		return errorResponse(c, err, "Could not save profile")
	}

	return c.JSON(fiber.Map{
		"profile": profile,
		"source":  origin.String(),
	})
}
