package handlers

import (
	"errors"

	"ecofinds/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errorResponse maps service errors to HTTP statuses. Anything that is not
// one of the known domain errors is a plain 500.
func errorResponse(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotSignedIn):
		status = fiber.StatusUnauthorized
	case errors.Is(err, models.ErrNotAuthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrAlreadyInCart):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
