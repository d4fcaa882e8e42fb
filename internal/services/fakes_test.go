package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/ats-checker/internal/models"
	"alfredoptarigan/ats-checker/internal/repositories"
)

// fakeModelClient returns a fixed answer or error and records prompts.
type fakeModelClient struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []Prompt
}

func (f *fakeModelClient) Complete(_ context.Context, prompt Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeModelClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeDocumentSource struct {
	text string
	err  error
	docs []Document
}

func (f *fakeDocumentSource) ExtractText(_ context.Context, doc Document) (string, error) {
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeAnalysisRepo is an in-memory AnalysisRepository.
type fakeAnalysisRepo struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*models.Analysis
}

func newFakeAnalysisRepo(analyses ...*models.Analysis) *fakeAnalysisRepo {
	repo := &fakeAnalysisRepo{analyses: make(map[uuid.UUID]*models.Analysis)}
	for _, a := range analyses {
		_ = repo.Create(a)
	}
	return repo
}

func (r *fakeAnalysisRepo) Create(analysis *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}
	copied := *analysis
	r.analyses[analysis.ID] = &copied
	return nil
}

func (r *fakeAnalysisRepo) FindByID(id uuid.UUID) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.analyses[id]
	if !ok {
		return nil, repositories.ErrAnalysisNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAnalysisRepo) FindByIDs(ids []uuid.UUID) ([]models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Analysis
	for _, id := range ids {
		if a, ok := r.analyses[id]; ok {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *fakeAnalysisRepo) FindUnindexed(limit int) ([]models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Analysis
	for _, a := range r.analyses {
		if a.IndexedAt == nil {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeAnalysisRepo) MarkIndexed(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.analyses[id]
	if !ok {
		return repositories.ErrAnalysisNotFound
	}
	now := time.Now()
	a.IndexedAt = &now
	return nil
}

func (r *fakeAnalysisRepo) isIndexed(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.analyses[id]
	return ok && a.IndexedAt != nil
}

// fakeEmbedder maps text to a vector of its rune count.
type fakeEmbedder struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len([]rune(text))), 1}, nil
}

type fakeJobIndex struct {
	mu      sync.Mutex
	chunks  []IndexedChunk
	hits    []SearchResult
	limit   int
	err     error
	deleted []uuid.UUID
}

func (f *fakeJobIndex) InitCollection(context.Context) error { return nil }

func (f *fakeJobIndex) UpsertChunks(_ context.Context, chunks []IndexedChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeJobIndex) Search(_ context.Context, _ []float32, limit int) ([]SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return append([]SearchResult(nil), f.hits...), nil
}

func (f *fakeJobIndex) DeleteAnalysis(_ context.Context, analysisID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, analysisID)
	return nil
}

func (f *fakeJobIndex) Close() error { return nil }

func (f *fakeJobIndex) upserted() []IndexedChunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]IndexedChunk(nil), f.chunks...)
}
