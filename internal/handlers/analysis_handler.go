package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/models"
	"alfredoptarigan/ats-checker/internal/repositories"
	"alfredoptarigan/ats-checker/internal/services"
)

const (
	resumeField         = "resume"
	jobDescriptionField = "jobDescription"
)

type AnalysisHandler struct {
	analyzer     services.AnalyzerService
	documents    services.PDFParserService
	analysisRepo repositories.AnalysisRepository
	// storage and queue are optional: nil disables archiving and indexing.
	storage     services.StorageService
	queue       services.IndexQueue
	maxFileSize int64
	logger      *zap.Logger
}

func NewAnalysisHandler(
	analyzer services.AnalyzerService,
	documents services.PDFParserService,
	analysisRepo repositories.AnalysisRepository,
	storage services.StorageService,
	queue services.IndexQueue,
	maxFileSize int64,
	log *zap.Logger,
) *AnalysisHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisHandler{
		analyzer:     analyzer,
		documents:    documents,
		analysisRepo: analysisRepo,
		storage:      storage,
		queue:        queue,
		maxFileSize:  maxFileSize,
		logger:       log,
	}
}

// HandleAnalyze handles POST /analysis/analyze
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	doc, err := h.readResume(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error(), "")
	}

	jobDescription := formValue(c, jobDescriptionField)
	if strings.TrimSpace(jobDescription) == "" {
		return respondError(c, fiber.StatusBadRequest, "job description is required", "")
	}

	result, err := h.analyzer.AnalyzeDocument(c.UserContext(), doc, jobDescription)
	if err != nil {
		h.logger.Error("❌ Analysis failed", zap.String("file", doc.Filename), zap.Error(err))
		return respondServiceError(c, "Failed to analyze resume", err)
	}

	analysis := &models.Analysis{
		UserID:          models.GuestUserID,
		ExtractedText:   result.SourceText,
		JobDescription:  strings.TrimSpace(jobDescription),
		Score:           result.Score,
		Summary:         result.Summary,
		MissingKeywords: result.MissingKeywords,
		Suggestions:     result.Suggestions,
		ResumeFile:      h.archive(doc),
	}

	if err := h.analysisRepo.Create(analysis); err != nil {
		h.logger.Error("❌ Failed to save analysis", zap.Error(err))
		if analysis.ResumeFile != "" {
			_ = h.storage.DeleteFile(analysis.ResumeFile)
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to save analysis", "")
	}

	if h.queue != nil {
		h.queue.EnqueueJob(analysis.ID)
	}

	h.logger.Info("✅ Analysis saved",
		zap.String("analysis_id", analysis.ID.String()),
		zap.Int("score", analysis.Score),
	)

	return c.JSON(models.AnalyzeResponse{
		Success:         true,
		AnalysisID:      analysis.ID.String(),
		Score:           result.Score,
		Summary:         result.Summary,
		MissingKeywords: result.MissingKeywords,
		Suggestions:     result.Suggestions,
		Message:         "Resume analyzed successfully",
	})
}

// HandleExtractText handles POST /analysis/extract-text
func (h *AnalysisHandler) HandleExtractText(c *fiber.Ctx) error {
	doc, err := h.readResume(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error(), "")
	}

	content, err := h.documents.ExtractTextWithMetaData(c.UserContext(), doc)
	if err != nil {
		return respondServiceError(c, "Failed to extract text", err)
	}

	return c.JSON(models.ExtractTextResponse{
		Success:   true,
		Text:      content.Text,
		FileName:  content.FileName,
		FileSize:  content.FileSize,
		PageCount: content.PageCount,
	})
}

// archive stores the upload when archiving is on. Failures only cost the archive copy.
func (h *AnalysisHandler) archive(doc services.Document) string {
	if h.storage == nil {
		return ""
	}

	filename, err := h.storage.SaveDocument(doc)
	if err != nil {
		h.logger.Warn("⚠️ Failed to archive resume", zap.String("file", doc.Filename), zap.Error(err))
		return ""
	}
	return filename
}

func (h *AnalysisHandler) readResume(c *fiber.Ctx) (services.Document, error) {
	file, err := formFile(c, resumeField)
	if err != nil {
		return services.Document{}, errors.New("resume file is required")
	}

	if file.Size == 0 {
		return services.Document{}, errors.New("resume file is empty")
	}

	if file.Size > h.maxFileSize {
		return services.Document{}, fmt.Errorf("resume file too large, max size is %d bytes", h.maxFileSize)
	}

	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		return services.Document{}, errors.New("only PDF files are supported")
	}

	content, err := readFileHeader(file, h.maxFileSize)
	if err != nil {
		return services.Document{}, err
	}

	return services.Document{
		Filename: file.Filename,
		Content:  content,
	}, nil
}

func readFileHeader(file *multipart.FileHeader, limit int64) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, errors.New("failed to open uploaded file")
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, errors.New("failed to read uploaded file")
	}
	if int64(len(content)) > limit {
		return nil, fmt.Errorf("resume file too large, max size is %d bytes", limit)
	}
	return content, nil
}

// formFile accepts the field name in camelCase or PascalCase.
func formFile(c *fiber.Ctx, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if err == nil {
		return file, nil
	}
	return c.FormFile(strings.ToUpper(field[:1]) + field[1:])
}

func formValue(c *fiber.Ctx, field string) string {
	if v := c.FormValue(field); v != "" {
		return v
	}
	return c.FormValue(strings.ToUpper(field[:1]) + field[1:])
}
