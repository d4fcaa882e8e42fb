package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/config"
	"alfredoptarigan/ats-checker/internal/repositories"
	"alfredoptarigan/ats-checker/internal/services"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Index every stored analysis that is missing from the job description index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return reindex(limit)
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)

	reindexCmd.Flags().IntP("limit", "l", 1000, "maximum number of analyses to index in one run")
}

func reindex(limit int) error {
	cfg, log := bootstrap()
	defer func() { _ = log.Sync() }()

	if !cfg.IndexEnabled() {
		return errors.New("job description index is disabled: set INDEX_ENABLED=true, GEMINI_API_KEY and QDRANT_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}
	analysisRepo := repositories.NewAnalysisRepository(db)

	indexer, jobIndex, err := newIndexer(ctx, cfg, analysisRepo, log)
	if err != nil {
		return err
	}
	defer func() { _ = jobIndex.Close() }()

	analyses, err := analysisRepo.FindUnindexed(limit)
	if err != nil {
		return err
	}

	log.Info("📋 Reindexing analyses", zap.Int("count", len(analyses)))

	worker := services.NewWorker(analysisRepo, indexer, cfg.Worker.Concurrency, 0, log)
	worker.Start(ctx)

	for _, analysis := range analyses {
		if err := worker.EnqueueJobWait(ctx, analysis.ID); err != nil {
			log.Warn("⚠️ Reindex interrupted", zap.Error(err))
			break
		}
	}

	// Stop drains the queue before returning.
	worker.Stop()

	remaining, err := analysisRepo.FindUnindexed(limit)
	if err != nil {
		return err
	}

	log.Info("✅ Reindex finished",
		zap.Int("indexed", len(analyses)-len(remaining)),
		zap.Int("remaining", len(remaining)),
	)

	return nil
}
