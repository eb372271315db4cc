package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are tuned for crawling public documentation sites politely.
const (
	// DefaultTimeout is the connection timeout for each HTTP request.
	// Documentation hosts are generally fast; 30 seconds covers slow CDN
	// edges without hanging a worker for minutes.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth limits link recursion from the seed. Most doc
	// trees are reachable within a handful of hops; 5 keeps crawls
	// bounded while still covering deeply nested API references.
	DefaultCrawlDepth = 5

	// DefaultMaxPages is the maximum number of pages to crawl per site.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages flag.
	DefaultMaxPages = 500

	// DefaultConcurrency is the number of sites crawled in parallel when
	// several seeds are given.
	DefaultConcurrency = 4

	// DefaultCrawlDelay is the delay between requests to the same site.
	// A politeness setting; 200ms is gentle without making large crawls
	// unbearably slow.
	DefaultCrawlDelay = 200 * time.Millisecond

	// DefaultUserAgent identifies the crawler in HTTP requests. Using a
	// descriptive User-Agent is good practice and lets operators identify
	// crawler traffic in their logs.
	DefaultUserAgent = "docscrape/1.0 (+https://github.com/VespianRex/lib2docscrape)"

	// DefaultMaxBodySize limits the response body size to read. 5MB is
	// generous for HTML documentation while preventing memory exhaustion
	// from unexpected large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "docscrape"
)

// Config holds all configuration options for a crawl run.
// It is populated from CLI flags and the optional config file, validated
// once, and passed through the application via dependency injection
// rather than global state.
type Config struct {
	// Seeds is the list of documentation URLs to crawl.
	// Each seed is validated by the URL engine before crawling starts.
	Seeds []string

	// Timeout is the connection timeout for each HTTP request.
	Timeout time.Duration

	// CrawlDepth is the maximum recursion depth from each seed.
	// Depth 0 means only fetch the seed page.
	CrawlDepth int

	// MaxPages is the maximum number of pages to crawl per site.
	MaxPages int

	// Concurrency is the number of seeds crawled in parallel.
	Concurrency int

	// CrawlDelay is the delay between requests during crawling.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of plain text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of plain text.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .docscrape in the current directory and then in
	// the user's home directory.
	ConfigFilePath string

	// FileConfig holds per-site and policy settings loaded from the
	// config file. Nil when no config file was found.
	FileConfig *File

	// DBDir is the directory for the SQLite crawl database.
	// When set, crawl sessions are persisted for later comparison and
	// re-validation. When empty, nothing is persisted.
	DBDir string

	// SaveToDB indicates whether to persist crawl sessions.
	// Automatically set to true when DBDir is configured.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
// Many defaults are non-zero, so relying on zero values would be wrong;
// this constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		CrawlDepth:  DefaultCrawlDepth,
		MaxPages:    DefaultMaxPages,
		Concurrency: DefaultConcurrency,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for docscrape.
// On Linux: ~/.local/share/docscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docscrape.
// On Linux: ~/.config/docscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks whether the configuration is usable.
// It is called once after CLI parsing, before any crawling begins, and
// returns the first problem found: fixing one error often makes later
// ones irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
