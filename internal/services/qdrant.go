package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const (
	payloadAnalysisID = "analysis_id"
	payloadChunk      = "chunk"
	payloadScore      = "score"
	payloadText       = "text"

	defaultQdrantGRPCPort = 6334
)

// IndexedChunk is one embedded slice of a stored job description.
type IndexedChunk struct {
	AnalysisID uuid.UUID
	Index      int
	Score      int
	Text       string
	Vector     []float32
}

type SearchResult struct {
	AnalysisID uuid.UUID
	Chunk      int
	Score      int
	Similarity float32
	Text       string
}

// JobIndex stores job description embeddings for similarity search.
type JobIndex interface {
	InitCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []IndexedChunk) error
	Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)
	DeleteAnalysis(ctx context.Context, analysisID uuid.UUID) error
	Close() error
}

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, vectorSize uint64, log *zap.Logger) (JobIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid Qdrant URL: missing host in %q", urlStr)
	}

	// The gRPC client talks to 6334 unless the URL names a port.
	port := defaultQdrantGRPCPort
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		logger:         log,
	}, nil
}

// InitCollection implements JobIndex.
func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Info("✅ Qdrant collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("✅ Qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertChunks implements JobIndex. Point IDs are derived from the analysis ID
// and chunk index, so re-indexing an analysis overwrites its points.
func (q *qdrantIndex) UpsertChunks(ctx context.Context, chunks []IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		payload := qdrant.NewValueMap(map[string]any{
			payloadAnalysisID: chunk.AnalysisID.String(),
			payloadChunk:      int64(chunk.Index),
			payloadScore:      int64(chunk.Score),
			payloadText:       chunk.Text,
		})

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(ChunkPointID(chunk.AnalysisID, chunk.Index).String()),
			Vectors: qdrant.NewVectors(chunk.Vector...),
			Payload: payload,
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// Search implements JobIndex.
func (q *qdrantIndex) Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		payload := point.GetPayload()

		analysisID, err := uuid.Parse(payload[payloadAnalysisID].GetStringValue())
		if err != nil {
			q.logger.Warn("⚠️ Skipping point without analysis id", zap.String("point", point.GetId().String()))
			continue
		}

		results = append(results, SearchResult{
			AnalysisID: analysisID,
			Chunk:      int(payload[payloadChunk].GetIntegerValue()),
			Score:      int(payload[payloadScore].GetIntegerValue()),
			Similarity: point.GetScore(),
			Text:       payload[payloadText].GetStringValue(),
		})
	}

	return results, nil
}

// DeleteAnalysis implements JobIndex.
func (q *qdrantIndex) DeleteAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch(payloadAnalysisID, analysisID.String()),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete analysis points: %w", err)
	}

	return nil
}

func (q *qdrantIndex) Close() error {
	return q.client.Close()
}

// ChunkPointID is the deterministic Qdrant point ID of one chunk.
func ChunkPointID(analysisID uuid.UUID, chunk int) uuid.UUID {
	return uuid.NewSHA1(analysisID, []byte(strconv.Itoa(chunk)))
}
