package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/VespianRex/lib2docscrape/internal/config"
	"github.com/VespianRex/lib2docscrape/internal/database"
	"github.com/VespianRex/lib2docscrape/internal/log"
	"github.com/VespianRex/lib2docscrape/internal/model"
	"github.com/VespianRex/lib2docscrape/internal/pipeline"
	"github.com/VespianRex/lib2docscrape/internal/report"
	"github.com/VespianRex/lib2docscrape/internal/urlinfo"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url]...",
		Short: "Crawl documentation sites starting from seed URLs",
		Long: `Crawl fetches documentation sites breadth-first from one or more seeds.

Every link found on a page is resolved against that page, validated, and
canonicalized before it is queued. Links that fail validation (dangerous
schemes, private hosts, traversal attempts, injection payloads, oversized
URLs) are recorded in the report with their rejection reason and never
fetched.

Examples:
  # Crawl a single documentation site
  docscrape crawl https://docs.example.com/

  # Crawl several sites concurrently
  docscrape crawl https://docs.a.example/ https://docs.b.example/

  # Output a Markdown report to a file
  docscrape crawl --markdown -o report.md https://docs.example.com/

  # Use a custom configuration file
  docscrape crawl -c myconfig.yaml https://docs.example.com/

Configuration file (.docscrape) example:
  defaults:
    depth: 3
  sites:
    docs.example.com:
      ignorePatterns:
        - "/changelog/*"
  policy:
    allowQueryString: false
    blockedSchemes: [javascript, data, vbscript, mailto, ftp]`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between requests to the same site")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header to send")

	// Batch crawling flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of sites crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docscrape in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Structured logging with credential masking.
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	policy, err := buildPolicy(cfg)
	if err != nil {
		return err
	}

	// Context with signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, policy, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site and policy configuration from the config file.
	// If the user explicitly specified a path, a missing file is an error;
	// otherwise an absent file means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.FileConfig, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.FileConfig = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Crawl sessions always persist to the XDG data directory.
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	cfg.Seeds = args

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildPolicy materializes the URL validation policy from the config file
// and rejects contradictory settings before any crawling starts.
func buildPolicy(cfg *config.Config) (*urlinfo.Policy, error) {
	var spec *config.PolicySpec
	if cfg.FileConfig != nil {
		spec = cfg.FileConfig.Policy
	}

	policy := spec.BuildPolicy()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid URL policy: %w", err)
	}
	return policy, nil
}

// runCrawl executes the crawl across all seeds.
func runCrawl(ctx context.Context, cfg *config.Config, policy *urlinfo.Policy, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Best effort cleanup
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	client := &http.Client{Timeout: cfg.Timeout}

	if len(cfg.Seeds) > 1 && cfg.Concurrency > 1 {
		return runBatchCrawl(ctx, cfg, policy, client, db, logger)
	}
	return runSequentialCrawl(ctx, cfg, policy, client, db, logger)
}

// runSequentialCrawl crawls seeds one at a time, applying per-site config.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, policy *urlinfo.Policy, client *http.Client, db *database.CrawlDB, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := createPipelineForSeed(seed, client, db, policy, cfg, logger)

		crawlReport := model.NewCrawlReport(seed)

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			continue
		}

		fmt.Printf("Crawl completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchProcessor.
//
// Batch mode uses the default site config only; per-site settings would
// require knowing the seed inside the pipeline factory, so for per-site
// config run sequentially with --concurrency 1.
func runBatchCrawl(ctx context.Context, cfg *config.Config, policy *urlinfo.Policy, client *http.Client, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d sites (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.Concurrency)

	startTime := time.Now()

	if cfg.FileConfig != nil && len(cfg.FileConfig.Sites) > 0 {
		logger.Warn("batch crawling uses default site config only; per-site settings are ignored",
			"siteCount", len(cfg.FileConfig.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use --concurrency 1 to apply per-site settings.\n\n")
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipelineForSeed("", client, db, policy, cfg, logger)
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	// Stream results as sites finish.
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Seeds, func(crawlReport *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Seeds), crawlReport.Seed)

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", crawlReport.Seed, "error", err)
		}
	})

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// createPipelineForSeed builds a crawl+save pipeline. The seed selects
// site-specific configuration; an empty seed uses the file defaults.
func createPipelineForSeed(seed string, client *http.Client, db *database.CrawlDB, policy *urlinfo.Policy, cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	siteConfig := siteConfigForSeed(cfg, seed, policy)

	crawlDepth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		crawlDepth = siteConfig.Depth
	}
	maxPages := cfg.MaxPages
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}

	crawlOpts := []pipeline.CrawlStepOption{
		pipeline.WithCrawlPolicy(policy),
		pipeline.WithCrawlMaxDepth(crawlDepth),
		pipeline.WithCrawlMaxPages(maxPages),
		pipeline.WithCrawlDelay(cfg.CrawlDelay),
		pipeline.WithCrawlUserAgent(cfg.UserAgent),
		pipeline.WithCrawlMaxBodySize(cfg.MaxBodySize),
		pipeline.WithCrawlLogger(logger),
	}
	if len(siteConfig.Headers) > 0 {
		crawlOpts = append(crawlOpts, pipeline.WithCrawlHeaders(siteConfig.Headers))
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, pipeline.WithCrawlIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if len(siteConfig.FollowPatterns) > 0 {
		crawlOpts = append(crawlOpts, pipeline.WithCrawlFollowPatterns(siteConfig.FollowPatterns))
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddStep(pipeline.NewCrawlStep(client, crawlOpts...))
	if db != nil {
		p.AddStep(pipeline.NewSaveStep(db, pipeline.WithSaveLogger(logger)))
	}
	return p
}

// siteConfigForSeed looks up the seed's host in the config file's sites.
// The seed is parsed by the URL engine so the lookup key matches the
// canonical host form.
func siteConfigForSeed(cfg *config.Config, seed string, policy *urlinfo.Policy) config.SiteConfig {
	if cfg.FileConfig == nil {
		return config.SiteConfig{}
	}
	if seed == "" {
		return cfg.FileConfig.Defaults
	}

	info := urlinfo.New(seed, urlinfo.WithPolicy(policy))
	if !info.IsValid() {
		return cfg.FileConfig.Defaults
	}
	return cfg.FileConfig.GetSiteConfig(info.Host())
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600: reports can embed session headers from the config file.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Write errors surface from the writer
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(crawlReport)
	return err
}
