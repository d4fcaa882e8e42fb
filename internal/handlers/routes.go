package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under /api/v1 and the banner at /.
func RegisterRoutes(app *fiber.App, analysis *AnalysisHandler, results *ResultHandler, similar *SimilarHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	group := api.Group("/analysis")
	group.Post("/analyze", analysis.HandleAnalyze)
	group.Post("/extract-text", analysis.HandleExtractText)
	// Registered before /:id so "similar" is not taken for an ID.
	group.Get("/similar", similar.HandleSimilar)
	group.Get("/:id", results.HandleGetResult)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ATS Resume Checker API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/health",
				"POST /api/v1/analysis/analyze",
				"POST /api/v1/analysis/extract-text",
				"GET /api/v1/analysis/similar?q=",
				"GET /api/v1/analysis/:id",
			},
		})
	})
}

// ErrorHandler renders errors that escape a handler as {error, code}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return respondError(c, code, err.Error(), "")
}
