package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yashikota/maildigest/internal/model"
)

// BatchProcessor handles concurrent processing of multiple document
// jobs. It uses errgroup to manage goroutines and respect the
// concurrency limit.
//
// Each job gets a fresh pipeline instance from the factory, so pipeline
// state never leaks between documents.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of documents processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed artifacts indexed by job position.
	// Access is synchronized via mutex.
	results []model.SummaryArtifact
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrently processed
// documents. Default is 3 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each job to create a fresh
// pipeline instance.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     3,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes multiple document jobs concurrently and
// returns one artifact per job, in input order.
//
// Faults are isolated per document: a job whose pipeline errors or
// panics yields a failure artifact at its position while the other jobs
// run to completion. The error return reports cancellation of the batch
// as a whole, never an individual document failure.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []*model.DocumentJob) ([]model.SummaryArtifact, error) {
	bp.logger.Debug("starting batch processing",
		"total_documents", len(jobs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]model.SummaryArtifact, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				bp.store(i, model.NewFailureArtifact(job.Filename, "processing cancelled: "+gctx.Err().Error()))
				return nil
			default:
			}

			bp.store(i, bp.processOne(gctx, job))
			return nil
		})
	}

	// Goroutines never return errors, so Wait only reports the
	// group-level context state.
	_ = g.Wait()

	bp.logger.Debug("batch processing complete",
		"total_documents", len(jobs),
		"elapsed", time.Since(startTime),
	)

	return bp.results, ctx.Err()
}

// processOne runs the pipeline for a single job with panic isolation.
func (bp *BatchProcessor) processOne(ctx context.Context, job *model.DocumentJob) (artifact model.SummaryArtifact) {
	defer func() {
		if r := recover(); r != nil {
			bp.logger.Error("document processing panicked",
				"document", job.Filename,
				"panic", r,
			)
			artifact = model.NewFailureArtifact(job.Filename, fmt.Sprintf("internal error: %v", r))
		}
	}()

	p := bp.pipelineFactory()
	if err := p.Execute(ctx, job); err != nil {
		bp.logger.Warn("document processing failed",
			"document", job.Filename,
			"error", err,
		)
		// Execute already stored a failure artifact on the job.
	}

	return job.Artifact
}

// store records an artifact at its job's position.
func (bp *BatchProcessor) store(i int, artifact model.SummaryArtifact) {
	bp.mu.Lock()
	bp.results[i] = artifact
	bp.mu.Unlock()
}
