package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/logger"
)

const rawAnswerLogLength = 500

type AnalyzerService interface {
	// Analyze runs prompt construction, the model call and parsing, in that order.
	Analyze(ctx context.Context, sourceText, jobDescription string) (*AnalysisResult, error)
	// AnalyzeDocument extracts the document text first, then runs Analyze.
	AnalyzeDocument(ctx context.Context, doc Document, jobDescription string) (*AnalysisResult, error)
}

type analyzerService struct {
	documents DocumentSource
	model     ModelClient
	prompts   *PromptBuilder
	parser    *ResponseParser
	logger    *zap.Logger
}

func NewAnalyzerService(documents DocumentSource, model ModelClient, log *zap.Logger) AnalyzerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &analyzerService{
		documents: documents,
		model:     model,
		prompts:   NewPromptBuilder(),
		parser:    NewResponseParser(log),
		logger:    log,
	}
}

// Analyze implements AnalyzerService.
func (s *analyzerService) Analyze(ctx context.Context, sourceText, jobDescription string) (*AnalysisResult, error) {
	prompt, err := s.prompts.BuildAnalysisPrompt(sourceText, jobDescription)
	if err != nil {
		return nil, err
	}

	s.logger.Info("🤖 Requesting ATS analysis",
		zap.Int("resume_length", len(sourceText)),
		zap.Int("job_description_length", len(jobDescription)),
	)

	answer, err := s.model.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("❌ Model call failed", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("📨 Raw model answer",
		zap.String("answer", logger.TruncateForLog(answer, rawAnswerLogLength)),
	)

	result := s.parser.Parse(answer, sourceText)

	s.logger.Info("✅ ATS analysis completed", zap.Int("score", result.Score))

	return result, nil
}

// AnalyzeDocument implements AnalyzerService.
func (s *analyzerService) AnalyzeDocument(ctx context.Context, doc Document, jobDescription string) (*AnalysisResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("%w: job description is empty", ErrInvalidInput)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: resume document is empty", ErrInvalidInput)
	}

	sourceText, err := s.documents.ExtractText(ctx, doc)
	if err != nil {
		s.logger.Warn("⚠️ Document extraction failed", zap.String("file", doc.Filename), zap.Error(err))
		if !errors.Is(err, ErrExtraction) {
			err = fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		return nil, err
	}

	return s.Analyze(ctx, sourceText, jobDescription)
}
