package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VespianRex/lib2docscrape/internal/config"
	"github.com/VespianRex/lib2docscrape/internal/crawler"
	"github.com/VespianRex/lib2docscrape/internal/database"
	"github.com/VespianRex/lib2docscrape/internal/model"
	"github.com/VespianRex/lib2docscrape/internal/urlinfo"
)

// CrawlStep fetches the documentation site rooted at the report's seed.
// It wraps a crawler.Spider and copies the spider's findings into the
// shared report.
type CrawlStep struct {
	// client performs the HTTP fetches.
	client *http.Client

	// policy is the URL validation policy applied to every link.
	policy *urlinfo.Policy

	// maxDepth limits crawl recursion from the seed.
	maxDepth int

	// maxPages limits the total pages fetched.
	maxPages int

	// delay is the politeness delay between requests.
	delay time.Duration

	// userAgent identifies the crawler in requests.
	userAgent string

	// maxBodySize limits response body reads.
	maxBodySize int64

	// ignorePatterns are URL path globs to skip.
	ignorePatterns []string

	// followPatterns restrict crawling to matching paths when set.
	followPatterns []string

	// headers are extra request headers from site config.
	headers map[string]string

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlPolicy sets the URL validation policy for the crawl.
func WithCrawlPolicy(policy *urlinfo.Policy) CrawlStepOption {
	return func(s *CrawlStep) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxPages sets the maximum number of pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlDelay sets the delay between requests.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlUserAgent sets the User-Agent header for the crawl.
func WithCrawlUserAgent(ua string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.userAgent = ua
	}
}

// WithCrawlMaxBodySize sets the maximum response body size.
func WithCrawlMaxBodySize(size int64) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxBodySize = size
	}
}

// WithCrawlIgnorePatterns sets URL path globs to skip.
func WithCrawlIgnorePatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.ignorePatterns = patterns
	}
}

// WithCrawlFollowPatterns restricts crawling to matching path globs.
func WithCrawlFollowPatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.followPatterns = patterns
	}
}

// WithCrawlHeaders sets extra request headers for every fetch.
func WithCrawlHeaders(headers map[string]string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.headers = headers
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCrawlStep creates a crawl step using the given HTTP client.
func NewCrawlStep(client *http.Client, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client:      client,
		policy:      urlinfo.DefaultPolicy(),
		maxDepth:    config.DefaultCrawlDepth,
		maxPages:    config.DefaultMaxPages,
		delay:       config.DefaultCrawlDelay,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl. The spider produces its own report which is
// merged into the pipeline's shared report, so later steps see the pages,
// link counts, and rejection diagnostics.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	spider := crawler.NewSpider(s.client,
		crawler.WithPolicy(s.policy),
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithDelay(s.delay),
		crawler.WithUserAgent(s.userAgent),
		crawler.WithMaxBodySize(s.maxBodySize),
		crawler.WithIgnorePatterns(s.ignorePatterns),
		crawler.WithFollowPatterns(s.followPatterns),
		crawler.WithHeaders(s.headers),
		crawler.WithSpiderLogger(s.logger),
	)

	result, err := spider.Crawl(ctx, report.Seed)
	if result != nil {
		// Keep the original start time; everything else comes from the
		// spider's run.
		started := report.Started
		*report = *result
		report.Started = started
	}
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	s.logger.Info("crawl complete",
		"seed", report.Seed,
		"pages", report.PagesCrawled(),
		"rejected", len(report.Rejected),
	)
	return nil
}

// SaveStep persists the report to the crawl database.
//
// Design decision: Persistence is a pipeline step rather than something
// the command does afterwards so that batch runs save each site as it
// finishes instead of holding every report until the end.
type SaveStep struct {
	// db is the crawl database. The step does not own the connection;
	// the caller opens and closes it.
	db *database.CrawlDB

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSaveStep creates a save step writing to the given database.
func NewSaveStep(db *database.CrawlDB, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do persists the report as a new session.
func (s *SaveStep) Do(ctx context.Context, report *model.CrawlReport) error {
	id, err := s.db.SaveReport(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("session saved",
		"session_id", id,
		"seed", report.Seed,
	)
	return nil
}
