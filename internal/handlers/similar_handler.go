package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/logger"
	"alfredoptarigan/ats-checker/internal/models"
	"alfredoptarigan/ats-checker/internal/services"
)

const snippetLength = 200

type SimilarHandler struct {
	// indexer is nil when the job description index is disabled.
	indexer services.IndexerService
	logger  *zap.Logger
}

func NewSimilarHandler(indexer services.IndexerService, log *zap.Logger) *SimilarHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SimilarHandler{
		indexer: indexer,
		logger:  log,
	}
}

// HandleSimilar handles GET /analysis/similar?q=&limit=
func (h *SimilarHandler) HandleSimilar(c *fiber.Ctx) error {
	if h.indexer == nil {
		return respondError(c, fiber.StatusServiceUnavailable, "Job description index is disabled", "")
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return respondError(c, fiber.StatusBadRequest, "Query parameter 'q' is required", "")
	}

	limit := c.QueryInt("limit", services.DefaultSimilarLimit)
	if limit < 1 || limit > services.MaxSimilarLimit {
		return respondError(c, fiber.StatusBadRequest, "Query parameter 'limit' must be between 1 and 50", "")
	}

	hits, err := h.indexer.SearchSimilar(c.UserContext(), query, limit)
	if err != nil {
		h.logger.Error("❌ Similarity search failed", zap.Error(err))
		return respondServiceError(c, "Failed to search job descriptions", err)
	}

	results := make([]models.SimilarAnalysisResponse, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.SimilarAnalysisResponse{
			AnalysisID: hit.AnalysisID.String(),
			Score:      hit.Score,
			Similarity: hit.Similarity,
			Snippet:    logger.TruncateForLog(hit.Text, snippetLength),
		})
	}

	return c.JSON(models.SimilarResponse{
		Query:   query,
		Results: results,
	})
}
