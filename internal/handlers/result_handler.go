package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/ats-checker/internal/models"
	"alfredoptarigan/ats-checker/internal/repositories"
)

type ResultHandler struct {
	analysisRepo repositories.AnalysisRepository
}

func NewResultHandler(analysisRepo repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{
		analysisRepo: analysisRepo,
	}
}

// HandleGetResult handles GET /analysis/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid analysis ID format", "")
	}

	analysis, err := h.analysisRepo.FindByID(analysisID)
	if err != nil {
		if errors.Is(err, repositories.ErrAnalysisNotFound) {
			return respondError(c, fiber.StatusNotFound, "Analysis not found", "")
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to load analysis", "")
	}

	return c.JSON(models.AnalysisResponse{
		ID:              analysis.ID.String(),
		Score:           analysis.Score,
		Summary:         analysis.Summary,
		MissingKeywords: nonNil(analysis.MissingKeywords),
		Suggestions:     nonNil(analysis.Suggestions),
		CreatedAt:       analysis.CreatedAt,
	})
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
