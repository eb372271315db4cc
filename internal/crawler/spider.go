package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/VespianRex/lib2docscrape/internal/model"
	"github.com/VespianRex/lib2docscrape/internal/urlinfo"
)

// Spider crawls documentation pages starting from a seed URL.
// It manages a breadth-first queue of validated links and respects depth,
// page-count, and politeness limits.
//
// Design decision: We call it "Spider" rather than "Crawler" because
// "Spider" is the traditional term, it distinguishes the component from
// the package name, and crawler.NewSpider() reads better than
// crawler.NewCrawler().
type Spider struct {
	// client performs the HTTP fetches.
	client *http.Client

	// policy is the URL validation policy applied to every discovered
	// link. Read-only after construction.
	policy *urlinfo.Policy

	// maxDepth limits how deep to crawl from the seed.
	// 0 means only the seed page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the total number of pages to crawl.
	maxPages int

	// delay is the time to wait between requests.
	delay time.Duration

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/internal/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are crawled.
	followPatterns []string

	// headers are extra request headers, typically from site config.
	headers map[string]string

	// logger for structured logging.
	logger *slog.Logger

	// visited tracks frontier dedup keys already seen, keyed by the URL
	// engine's comparison hash.
	visited map[uint64]bool

	// mutex protects visited and pageCount.
	mutex sync.Mutex

	// pageCount tracks pages crawled.
	pageCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithPolicy sets the URL validation policy. Defaults to
// urlinfo.DefaultPolicy.
func WithPolicy(policy *urlinfo.Policy) SpiderOption {
	return func(s *Spider) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed page, 1 = seed plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to crawl.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/internal/*", "*.pdf").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are crawled.
// Empty means all URLs are allowed (default).
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithHeaders sets extra request headers applied to every fetch.
func WithHeaders(headers map[string]string) SpiderOption {
	return func(s *Spider) {
		s.headers = headers
	}
}

// WithSpiderLogger sets a custom logger. Defaults to slog.Default.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a new Spider with the given HTTP client.
//
// Design decision: We require an external client because timeout and
// transport configuration belong to the caller, and it allows test
// servers to inject their own clients.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		client:      client,
		policy:      urlinfo.DefaultPolicy(),
		maxDepth:    5,
		maxPages:    500,
		delay:       200 * time.Millisecond,
		userAgent:   "docscrape/1.0",
		maxBodySize: 5 * 1024 * 1024,
		logger:      slog.Default(),
		visited:     make(map[uint64]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// queueItem is one entry in the crawl frontier.
type queueItem struct {
	info  *urlinfo.URLInfo
	depth int
}

// Crawl starts crawling from the seed URL and returns the crawl report.
// The seed itself must pass validation; discovered links that fail
// validation are recorded in the report and skipped, never fetched.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*model.CrawlReport, error) {
	report := model.NewCrawlReport(seedURL)
	defer func() {
		report.Elapsed = time.Since(report.Started)
	}()

	seed := urlinfo.New(seedURL, urlinfo.WithPolicy(s.policy), urlinfo.WithLogger(s.logger))
	if !seed.IsValid() {
		report.Error = seed.ErrorMessage()
		return report, fmt.Errorf("invalid seed URL %q: %s", seedURL, seed.ErrorMessage())
	}
	report.Seed = seed.Normalized()
	report.SeedDomain = seed.RegisteredDomain()

	queue := []queueItem{{info: seed, depth: 0}}

	for len(queue) > 0 && s.pages() < s.maxPages {
		select {
		case <-ctx.Done():
			report.TimedOut = true
			return report, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		if s.isVisited(item.info) {
			continue
		}
		s.markVisited(item.info)

		page, err := s.fetchPage(ctx, item.info.Normalized(), item.depth)
		if err != nil {
			// Some pages will fail; record and continue.
			report.FetchErrors++
			s.logger.Debug("fetch failed",
				"url", item.info.Normalized(),
				"error", err,
			)
			continue
		}

		report.Pages = append(report.Pages, page)
		s.addPage()

		if item.depth >= s.maxDepth {
			continue
		}

		for _, next := range s.selectLinks(page, report, seed.RegisteredDomain()) {
			queue = append(queue, queueItem{info: next, depth: item.depth + 1})
		}

		// Politeness delay.
		if s.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				report.TimedOut = true
				return report, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return report, nil
}

// selectLinks validates the raw links found on a page, updates the
// report's link accounting, and returns the internal links worth queueing.
// Page.Links and Page.Assets are rewritten to canonical form here, so
// everything stored downstream refers to validated URLs only.
func (s *Spider) selectLinks(page *model.Page, report *model.CrawlReport, seedDomain string) []*urlinfo.URLInfo {
	var enqueue []*urlinfo.URLInfo

	links := page.Links
	page.Links = page.Links[:0]
	for _, raw := range links {
		info := urlinfo.New(raw,
			urlinfo.WithBase(page.URL),
			urlinfo.WithPolicy(s.policy),
			urlinfo.WithLogger(s.logger),
		)
		if !info.IsValid() {
			report.Rejected = append(report.Rejected, model.RejectedLink{
				Raw:       raw,
				SourceURL: page.URL,
				Reason:    info.ErrorMessage(),
			})
			continue
		}

		page.Links = append(page.Links, info.Normalized())

		switch info.Classify(seedDomain) {
		case urlinfo.URLTypeInternal:
			report.InternalLinks++
			if !s.isVisited(info) && s.shouldCrawl(info) {
				enqueue = append(enqueue, info)
			}
		case urlinfo.URLTypeExternal:
			report.ExternalLinks++
		case urlinfo.URLTypeUnknown:
			// Valid links always classify; nothing to count.
		}
	}

	assets := page.Assets
	page.Assets = page.Assets[:0]
	for _, raw := range assets {
		info := urlinfo.New(raw,
			urlinfo.WithBase(page.URL),
			urlinfo.WithPolicy(s.policy),
			urlinfo.WithLogger(s.logger),
		)
		if !info.IsValid() {
			report.Rejected = append(report.Rejected, model.RejectedLink{
				Raw:       raw,
				SourceURL: page.URL,
				Reason:    info.ErrorMessage(),
			})
			continue
		}
		page.Assets = append(page.Assets, info.Normalized())
	}

	return enqueue
}

// fetchPage fetches a single page and extracts its content and links.
func (s *Spider) fetchPage(ctx context.Context, pageURL string, depth int) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Depth:       depth,
		Size:        int64(len(body)),
	}
	page.ComputeHash(body)

	if strings.Contains(page.ContentType, "text/html") {
		result, err := NewParser().Parse(strings.NewReader(string(body)))
		if err == nil {
			page.Title = result.Title
			page.Links = result.Links
			page.Assets = result.Assets
		}
	}

	return page, nil
}

// isVisited checks if a URL's dedup key has been seen.
func (s *Spider) isVisited(info *urlinfo.URLInfo) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[info.Hash()]
}

// markVisited records a URL's dedup key.
func (s *Spider) markVisited(info *urlinfo.URLInfo) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[info.Hash()] = true
}

// pages returns the number of pages crawled so far.
func (s *Spider) pages() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.pageCount
}

// addPage increments the crawled page counter.
func (s *Spider) addPage() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pageCount++
}

// Reset clears the spider's state, allowing it to be reused.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[uint64]bool)
	s.pageCount = 0
}

// shouldCrawl checks a validated URL against ignore/follow patterns.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise, crawl it
func (s *Spider) shouldCrawl(info *urlinfo.URLInfo) bool {
	path := info.Path()
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) == 0 {
		return true
	}
	for _, pattern := range s.followPatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern matches a glob pattern against a path. A trailing "*"
// also matches any suffix including "/", which filepath.Match alone does
// not do, so "/admin/*" covers "/admin/a/b".
func matchPattern(pattern, path string) bool {
	if ok, err := filepath.Match(pattern, path); err == nil && ok {
		return true
	}
	if prefix, found := strings.CutSuffix(pattern, "*"); found {
		return strings.HasPrefix(path, prefix)
	}
	return false
}
