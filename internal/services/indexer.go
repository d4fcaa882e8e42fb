package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/repositories"
)

const (
	DefaultSimilarLimit = 5
	MaxSimilarLimit     = 50

	// searchOverfetch widens the raw query so de-duplication by analysis still fills the limit.
	searchOverfetch = 4
)

// IndexerService keeps stored job descriptions searchable by meaning.
type IndexerService interface {
	IndexAnalysis(ctx context.Context, analysisID uuid.UUID) error
	SearchSimilar(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

type indexerService struct {
	analysisRepo repositories.AnalysisRepository
	embedder     Embedder
	index        JobIndex
	chunker      TextChunker
	logger       *zap.Logger
}

func NewIndexerService(
	analysisRepo repositories.AnalysisRepository,
	embedder Embedder,
	index JobIndex,
	log *zap.Logger,
) IndexerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &indexerService{
		analysisRepo: analysisRepo,
		embedder:     embedder,
		index:        index,
		chunker:      NewTextChunker(),
		logger:       log,
	}
}

// IndexAnalysis implements IndexerService.
func (s *indexerService) IndexAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	analysis, err := s.analysisRepo.FindByID(analysisID)
	if err != nil {
		return fmt.Errorf("failed to load analysis %s: %w", analysisID, err)
	}

	texts := s.chunker.ChunkText(analysis.JobDescription, DefaultChunkSize, DefaultChunkOverlap)

	chunks := make([]IndexedChunk, 0, len(texts))
	for i, text := range texts {
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of analysis %s: %w", i, analysisID, err)
		}

		chunks = append(chunks, IndexedChunk{
			AnalysisID: analysisID,
			Index:      i,
			Score:      analysis.Score,
			Text:       text,
			Vector:     vector,
		})
	}

	// Drop chunks from an earlier run so a shorter description leaves no stale tail.
	if err := s.index.DeleteAnalysis(ctx, analysisID); err != nil {
		return err
	}

	if err := s.index.UpsertChunks(ctx, chunks); err != nil {
		return err
	}

	if err := s.analysisRepo.MarkIndexed(analysisID); err != nil {
		return err
	}

	s.logger.Info("📚 Analysis indexed",
		zap.String("analysis_id", analysisID.String()),
		zap.Int("chunks", len(chunks)),
	)

	return nil
}

// SearchSimilar implements IndexerService. Results hold one hit per analysis,
// the best-matching chunk, ordered by similarity.
func (s *indexerService) SearchSimilar(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	if limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, vector, limit*searchOverfetch)
	if err != nil {
		return nil, err
	}

	return s.withStoredScores(bestHitPerAnalysis(hits, limit))
}

// withStoredScores replaces payload scores with the stored ones and drops hits
// whose analysis no longer exists.
func (s *indexerService) withStoredScores(hits []SearchResult) ([]SearchResult, error) {
	if len(hits) == 0 {
		return hits, nil
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.AnalysisID)
	}

	analyses, err := s.analysisRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched analyses: %w", err)
	}

	scores := make(map[uuid.UUID]int, len(analyses))
	for _, a := range analyses {
		scores[a.ID] = a.Score
	}

	results := hits[:0]
	for _, hit := range hits {
		score, ok := scores[hit.AnalysisID]
		if !ok {
			s.logger.Debug("Skipping hit for missing analysis", zap.String("analysis_id", hit.AnalysisID.String()))
			continue
		}
		hit.Score = score
		results = append(results, hit)
	}

	return results, nil
}

func bestHitPerAnalysis(hits []SearchResult, limit int) []SearchResult {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	seen := make(map[uuid.UUID]bool, len(hits))
	results := make([]SearchResult, 0, limit)

	for _, hit := range hits {
		if seen[hit.AnalysisID] {
			continue
		}
		seen[hit.AnalysisID] = true
		results = append(results, hit)

		if len(results) == limit {
			break
		}
	}

	return results
}
