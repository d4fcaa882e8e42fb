package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-checker/internal/models"
	"alfredoptarigan/ats-checker/internal/repositories"
	"alfredoptarigan/ats-checker/internal/services"
)

// statusForError maps a service error onto the HTTP status returned to clients.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrExtraction):
		return fiber.StatusBadRequest
	case errors.Is(err, repositories.ErrAnalysisNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrModelCall) && errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, services.ErrModelCall):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, status int, message string, details string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Error:   message,
		Code:    status,
		Details: details,
	})
}

// respondServiceError hides the cause of internal errors; client and upstream
// errors are reported as they are.
func respondServiceError(c *fiber.Ctx, message string, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		return respondError(c, status, message, "")
	}
	return respondError(c, status, message, err.Error())
}
