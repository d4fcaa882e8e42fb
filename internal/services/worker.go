package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/repositories"
)

// ErrWorkerStopped is returned when a job is offered to a stopped worker.
var ErrWorkerStopped = errors.New("worker stopped")

const (
	defaultQueueSize = 100
	pollBatchSize    = 10
	jobTimeout       = 2 * time.Minute
)

// IndexQueue accepts stored analyses for background indexing.
type IndexQueue interface {
	EnqueueJob(analysisID uuid.UUID) bool
}

type Worker interface {
	IndexQueue
	// Start runs the workers and the poller. Cancelling ctx stops the poller;
	// jobs run detached from it so Stop can still drain the queue.
	Start(ctx context.Context)
	// Stop stops the poller, lets the workers finish every queued job, then returns.
	Stop()
	// EnqueueJobWait blocks until the job is queued, the worker stops or ctx ends.
	EnqueueJobWait(ctx context.Context, analysisID uuid.UUID) error
}

type worker struct {
	analysisRepo repositories.AnalysisRepository
	indexer      IndexerService
	logger       *zap.Logger

	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration

	mu       sync.Mutex
	pending  map[uuid.UUID]struct{}
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWorker creates an index worker. A non-positive pollInterval disables the
// poller that re-enqueues unindexed analyses.
func NewWorker(
	analysisRepo repositories.AnalysisRepository,
	indexer IndexerService,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &worker{
		analysisRepo: analysisRepo,
		indexer:      indexer,
		logger:       log,
		jobQueue:     make(chan uuid.UUID, defaultQueueSize),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		pending:      make(map[uuid.UUID]struct{}),
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("🚀 Starting index worker", zap.Int("concurrency", w.concurrency))

	jobCtx := context.WithoutCancel(ctx)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(jobCtx, i+1)
	}

	if w.pollInterval > 0 {
		w.wg.Add(1)
		go w.pollUnindexed(ctx)
	}

	w.logger.Info("✅ Index worker started")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("🛑 Stopping index worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("✅ Index worker stopped")
	})
}

// EnqueueJob implements IndexQueue. It never blocks: when the queue is full the
// job is dropped and left for the poller.
func (w *worker) EnqueueJob(analysisID uuid.UUID) bool {
	if !w.markPending(analysisID) {
		return true
	}

	select {
	case <-w.stopChan:
		w.clearPending(analysisID)
		w.logger.Warn("⚠️ Worker stopped, cannot enqueue job", zap.String("analysis_id", analysisID.String()))
		return false
	default:
	}

	select {
	case w.jobQueue <- analysisID:
		w.logger.Debug("📥 Job enqueued", zap.String("analysis_id", analysisID.String()))
		return true
	default:
		w.clearPending(analysisID)
		w.logger.Warn("⚠️ Index queue full, job left for the poller", zap.String("analysis_id", analysisID.String()))
		return false
	}
}

// EnqueueJobWait implements Worker.
func (w *worker) EnqueueJobWait(ctx context.Context, analysisID uuid.UUID) error {
	if !w.markPending(analysisID) {
		return nil
	}

	select {
	case w.jobQueue <- analysisID:
		return nil
	case <-w.stopChan:
		w.clearPending(analysisID)
		return ErrWorkerStopped
	case <-ctx.Done():
		w.clearPending(analysisID)
		return ctx.Err()
	}
}

func (w *worker) markPending(analysisID uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[analysisID]; ok {
		return false
	}
	w.pending[analysisID] = struct{}{}
	return true
}

func (w *worker) clearPending(analysisID uuid.UUID) {
	w.mu.Lock()
	delete(w.pending, analysisID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case analysisID := <-w.jobQueue:
			w.process(ctx, workerID, analysisID)
		case <-w.stopChan:
			for {
				select {
				case analysisID := <-w.jobQueue:
					w.process(ctx, workerID, analysisID)
				default:
					w.logger.Debug("👷 Worker stopped", zap.Int("worker", workerID))
					return
				}
			}
		}
	}
}

func (w *worker) process(ctx context.Context, workerID int, analysisID uuid.UUID) {
	defer w.clearPending(analysisID)

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if err := w.indexer.IndexAnalysis(ctx, analysisID); err != nil {
		w.logger.Error("❌ Failed to index analysis",
			zap.Int("worker", workerID),
			zap.String("analysis_id", analysisID.String()),
			zap.Error(err),
		)
		return
	}

	w.logger.Debug("✅ Job completed",
		zap.Int("worker", workerID),
		zap.String("analysis_id", analysisID.String()),
	)
}

func (w *worker) pollUnindexed(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			analyses, err := w.analysisRepo.FindUnindexed(pollBatchSize)
			if err != nil {
				w.logger.Warn("⚠️ Failed to fetch unindexed analyses", zap.Error(err))
				continue
			}

			if len(analyses) > 0 {
				w.logger.Info("📋 Found unindexed analyses", zap.Int("count", len(analyses)))
			}

			for _, analysis := range analyses {
				w.EnqueueJob(analysis.ID)
			}
		}
	}
}
