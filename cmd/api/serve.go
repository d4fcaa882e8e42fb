package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/config"
	"alfredoptarigan/ats-checker/internal/handlers"
	"alfredoptarigan/ats-checker/internal/repositories"
	"alfredoptarigan/ats-checker/internal/services"
)

// multipartOverhead leaves room for the job description and form framing next to the file.
const multipartOverhead = 1 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg, log := bootstrap()
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Error("❌ Invalid configuration", zap.Error(err))
		return err
	}
	log.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Error("❌ Failed to initialize database", zap.Error(err))
		return err
	}

	analysisRepo := repositories.NewAnalysisRepository(db)

	var storage services.StorageService
	if cfg.Storage.ArchiveUploads {
		storage = services.NewStorageService(cfg.Storage.UploadPath)
		if err := storage.EnsureUploadDir(); err != nil {
			log.Error("❌ Failed to create upload directory", zap.Error(err))
			return err
		}
	}

	pdfParser := services.NewPDFParserService(cfg.Storage.MaxFileSize)

	modelClient, err := newModelClient(ctx, cfg, log)
	if err != nil {
		log.Error("❌ Failed to initialize model client", zap.Error(err))
		return err
	}

	analyzer := services.NewAnalyzerService(pdfParser, modelClient, log)
	log.Info("✅ Services initialized successfully")

	var (
		indexer services.IndexerService
		queue   services.IndexQueue
		worker  services.Worker
	)
	if cfg.IndexEnabled() {
		var jobIndex services.JobIndex
		indexer, jobIndex, err = newIndexer(ctx, cfg, analysisRepo, log)
		if err != nil {
			log.Error("❌ Failed to initialize job description index", zap.Error(err))
			return err
		}
		defer func() { _ = jobIndex.Close() }()

		worker = services.NewWorker(analysisRepo, indexer, cfg.Worker.Concurrency, cfg.Worker.PollInterval, log)
		worker.Start(ctx)
		queue = worker
	} else {
		log.Info("ℹ️ Job description index disabled")
	}

	app := newServer(cfg,
		handlers.NewAnalysisHandler(analyzer, pdfParser, analysisRepo, storage, queue, cfg.Storage.MaxFileSize, log),
		handlers.NewResultHandler(analysisRepo),
		handlers.NewSimilarHandler(indexer, log),
	)
	log.Info("✅ Handlers initialized")

	go func() {
		<-ctx.Done()
		log.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Error("❌ Failed to start server", zap.Error(err))
		return err
	}

	if worker != nil {
		worker.Stop()
	}

	return nil
}

func newServer(cfg *config.Config, analysis *handlers.AnalysisHandler, results *handlers.ResultHandler, similar *handlers.SimilarHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ATS Resume Checker API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + multipartOverhead,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(app, analysis, results, similar)

	return app
}
