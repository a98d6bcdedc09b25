package services

import (
	"errors"
	"fmt"

	"falta-uno-backend/store"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a domain error kind to its HTTP status. Every handler
// funnels failures through here so the mobile client sees one shape.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSchedule):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrEligibility), errors.Is(err, ErrPermission):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConflict), errors.Is(err, ErrNoSlots):
		status = fiber.StatusConflict
	case errors.Is(err, ErrStorage):
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// mapStoreErr lifts storage-layer failures into the domain taxonomy.
func mapStoreErr(err error, contexto string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, contexto)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrConflict, contexto)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStorage, contexto, err)
	}
}
