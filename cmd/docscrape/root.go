// Package main provides the entry point for the docscrape CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for docscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docscrape",
		Short: "Documentation site crawler with strict URL validation",
		Long: `docscrape crawls documentation sites starting from one or more seed URLs.

Every discovered link passes through a validation and canonicalization
engine before it is fetched: dangerous schemes, private hosts, traversal
attempts, and injection payloads are rejected and reported instead of
crawled. Crawl sessions are stored locally so they can be compared and
re-checked against newer validation policies.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
