package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/config"
	"alfredoptarigan/ats-checker/internal/repositories"
	"alfredoptarigan/ats-checker/internal/services"
)

// newModelClient builds the configured provider client behind the rate limiter.
func newModelClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.ModelClient, error) {
	modelCfg := cfg.ModelConfig()

	client, err := services.NewModelClient(ctx, modelCfg, log)
	if err != nil {
		return nil, err
	}

	log.Info("✅ Model client initialized",
		zap.String("provider", modelCfg.Provider),
		zap.Float64("rate_limit_rps", cfg.LLM.RateLimitRPS),
	)

	return services.NewRateLimitedClient(client, modelCfg.Provider, cfg.LLM.RateLimitRPS, cfg.LLM.RateLimitBurst), nil
}

// newIndexer connects the embedder and Qdrant. The returned JobIndex must be closed by the caller.
func newIndexer(
	ctx context.Context,
	cfg *config.Config,
	analysisRepo repositories.AnalysisRepository,
	log *zap.Logger,
) (services.IndexerService, services.JobIndex, error) {
	embedder, err := services.NewGeminiEmbedder(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	jobIndex, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Qdrant.VectorSize,
		log,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := jobIndex.InitCollection(ctx); err != nil {
		_ = jobIndex.Close()
		return nil, nil, err
	}

	log.Info("✅ Job description index initialized", zap.String("collection", cfg.Qdrant.Collection))

	return services.NewIndexerService(analysisRepo, embedder, jobIndex, log), jobIndex, nil
}
