package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/VespianRex/lib2docscrape/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor crawls multiple documentation sites concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: Batch crawling lives outside Pipeline because a
// pipeline runs one seed; the batch layer only decides how many run at
// once and collects the results.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each seed.
	// A factory ensures each crawl gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed crawl reports, indexed like the input.
	results []*model.CrawlReport
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

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called once per seed so that spider
// state (visited sets, page counters) never leaks between sites.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.CrawlReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple seeds concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: errgroup.SetLimit instead of a hand-rolled worker
// pool. Each seed gets its own goroutine, but only 'concurrency'
// goroutines run simultaneously.
//
// Returns all reports in input order, including ones whose crawl failed;
// a failed crawl records its error in the report. The error return
// indicates cancellation, not per-seed failures.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, seeds []string) ([]*model.CrawlReport, error) {
	bp.logger.Info("starting batch crawl",
		"total_seeds", len(seeds),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate to keep results in input order.
	bp.results = make([]*model.CrawlReport, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling site",
				"seed", seed,
				"index", i+1,
				"total", len(seeds),
			)

			report := model.NewCrawlReport(seed)
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, report)

			// Store the report regardless of error; it carries the error
			// message if the crawl failed.
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("crawl failed",
					"seed", seed,
					"error", err,
				)
				// Other seeds should still run, so the error stays in the
				// report rather than cancelling the group.
				return nil
			}

			bp.logger.Info("crawl finished",
				"seed", seed,
				"pages", report.PagesCrawled(),
			)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch crawl complete",
		"total_seeds", len(seeds),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback crawls multiple seeds and calls a callback for
// each completed crawl. Useful for streaming results as they finish.
//
// The callback receives the report and the seed's index in the original
// slice. It runs on the goroutine that finished the crawl, so it must be
// safe for concurrent use if it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	seeds []string,
	callback func(report *model.CrawlReport, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewCrawlReport(seed)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			callback(report, i)
			return nil
		})
	}

	return g.Wait()
}
