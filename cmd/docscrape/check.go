package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/VespianRex/lib2docscrape/internal/config"
	"github.com/VespianRex/lib2docscrape/internal/database"
	"github.com/VespianRex/lib2docscrape/internal/log"
	"github.com/VespianRex/lib2docscrape/internal/urlinfo"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [seed-url]",
		Short: "Re-validate stored URLs against the current policy",
		Long: `Check loads the URLs stored from previous crawls of a seed and runs each
one through the URL validation engine again.

This is useful after tightening the validation policy: URLs that were
accepted by an older crawl but fail under the current policy are listed
with their rejection reason.

Examples:
  # Re-validate everything stored for a site
  docscrape check https://docs.example.com/

  # Check against a stricter policy from a config file
  docscrape check -c strict.yaml https://docs.example.com/

  # List stored crawl sessions instead of checking URLs
  docscrape check --list https://docs.example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path supplying the policy to check against")
	cmd.Flags().BoolP("list", "l", false,
		"List stored crawl sessions for the seed instead of checking URLs")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	seed := args[0]

	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	listOnly, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	policy, err := loadCheckPolicy(configPathFlag)
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no stored crawls found (run 'docscrape crawl' first): %w", err)
	}
	defer db.Close() //nolint:errcheck // Best effort cleanup

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The seed is normalized first so the lookup matches what the crawler
	// stored.
	info := urlinfo.New(seed, urlinfo.WithPolicy(policy), urlinfo.WithLogger(logger))
	if !info.IsValid() {
		return fmt.Errorf("invalid seed URL %q: %s", seed, info.ErrorMessage())
	}

	if listOnly {
		return listSessions(ctx, cmd, db, info.Normalized())
	}
	return checkStoredURLs(ctx, cmd, db, info.Normalized(), policy, logger)
}

// loadCheckPolicy builds the validation policy from an optional config
// file. An explicitly specified file must exist.
func loadCheckPolicy(configPathFlag string) (*urlinfo.Policy, error) {
	var spec *config.PolicySpec

	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		fileConfig, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		spec = fileConfig.Policy
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	policy := spec.BuildPolicy()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid URL policy: %w", err)
	}
	return policy, nil
}

// listSessions prints the stored crawl sessions for a seed.
func listSessions(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB, seed string) error {
	sessions, err := db.ListSessions(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No stored sessions for %s\n", seed)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Stored sessions for %s:\n\n", seed)
	for _, s := range sessions {
		fmt.Fprintf(out, "  #%d  %s  pages=%d internal=%d external=%d errors=%d\n",
			s.ID,
			s.Started.Format("2006-01-02 15:04:05"),
			s.PagesCrawled,
			s.InternalLinks,
			s.ExternalLinks,
			s.FetchErrors,
		)
	}
	return nil
}

// checkStoredURLs re-validates every stored URL of a seed and prints the
// ones that fail under the current policy.
func checkStoredURLs(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB, seed string, policy *urlinfo.Policy, logger *slog.Logger) error {
	urls, err := db.StoredURLs(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to load stored URLs: %w", err)
	}
	if len(urls) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No stored URLs for %s\n", seed)
		return nil
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, u := range urls {
		info := urlinfo.New(u, urlinfo.WithPolicy(policy), urlinfo.WithLogger(logger))
		if info.IsValid() {
			continue
		}
		failed++
		fmt.Fprintf(out, "  FAIL  %s\n        %s\n", u, info.ErrorMessage())
	}

	if failed == 0 {
		fmt.Fprintf(out, "All %d stored URLs pass the current policy.\n", len(urls))
	} else {
		fmt.Fprintf(out, "\n%d of %d stored URLs fail the current policy.\n", failed, len(urls))
	}
	return nil
}
