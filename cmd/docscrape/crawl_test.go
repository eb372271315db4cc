package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/VespianRex/lib2docscrape/internal/config"
	"github.com/VespianRex/lib2docscrape/internal/model"
	"github.com/VespianRex/lib2docscrape/internal/urlinfo"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url]..." {
			t.Errorf("expected use 'crawl [seed-url]...', got %q", cmd.Use)
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has expected flags with shorthands", func(t *testing.T) {
		t.Parallel()

		flags := map[string]string{
			"timeout":     "t",
			"depth":       "d",
			"max-pages":   "p",
			"concurrency": "b",
			"config":      "c",
			"json":        "j",
			"markdown":    "m",
			"output":      "o",
		}
		for name, shorthand := range flags {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				t.Fatalf("expected %s flag", name)
			}
			if flag.Shorthand != shorthand {
				t.Errorf("flag %s shorthand = %q, want %q", name, flag.Shorthand, shorthand)
			}
		}
	})

	t.Run("has delay and user-agent flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("delay") == nil {
			t.Error("expected delay flag")
		}
		if cmd.Flags().Lookup("user-agent") == nil {
			t.Error("expected user-agent flag")
		}
	})
}

// TestBuildConfig tests config construction from flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults match config package", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() = %v", err)
		}

		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("timeout = %v", cfg.Timeout)
		}
		if cfg.CrawlDepth != config.DefaultCrawlDepth {
			t.Errorf("depth = %d", cfg.CrawlDepth)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("maxPages = %d", cfg.MaxPages)
		}
		if cfg.Concurrency != config.DefaultConcurrency {
			t.Errorf("concurrency = %d", cfg.Concurrency)
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://docs.example.com/" {
			t.Errorf("seeds = %v", cfg.Seeds)
		}
		if !cfg.SaveToDB || cfg.DBDir == "" {
			t.Error("expected database persistence enabled")
		}
	})

	t.Run("parses flag overrides", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("depth", "2"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("max-pages", "10"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("timeout", "5s"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() = %v", err)
		}
		if cfg.CrawlDepth != 2 || cfg.MaxPages != 10 || cfg.Timeout != 5*time.Second {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
			t.Fatal(err)
		}

		if _, err := buildConfig(cmd, []string{"https://docs.example.com/"}); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("loads explicit config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".docscrape")
		content := `
sites:
  docs.example.com:
    depth: 2
policy:
  allowQueryString: false
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() = %v", err)
		}
		if cfg.FileConfig == nil {
			t.Fatal("expected file config")
		}
		if cfg.FileConfig.Sites["docs.example.com"].Depth != 2 {
			t.Errorf("site config = %+v", cfg.FileConfig.Sites)
		}

		policy, err := buildPolicy(cfg)
		if err != nil {
			t.Fatalf("buildPolicy() = %v", err)
		}
		if policy.AllowQueryString {
			t.Error("expected query strings disallowed by policy override")
		}
	})
}

// TestSiteConfigForSeed tests host-keyed site config lookup.
func TestSiteConfigForSeed(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.FileConfig = &config.File{
		Defaults: config.SiteConfig{Depth: 1},
		Sites: map[string]config.SiteConfig{
			"docs.example.com": {Depth: 7},
		},
	}
	policy := urlinfo.DefaultPolicy()

	t.Run("matches canonical host", func(t *testing.T) {
		t.Parallel()

		// Host casing folds during canonicalization, so the lookup hits.
		sc := siteConfigForSeed(cfg, "https://DOCS.Example.com/guide", policy)
		if sc.Depth != 7 {
			t.Errorf("depth = %d, want 7", sc.Depth)
		}
	})

	t.Run("falls back to defaults", func(t *testing.T) {
		t.Parallel()

		sc := siteConfigForSeed(cfg, "https://other.example.com/", policy)
		if sc.Depth != 1 {
			t.Errorf("depth = %d, want 1", sc.Depth)
		}
	})

	t.Run("invalid seed uses defaults", func(t *testing.T) {
		t.Parallel()

		sc := siteConfigForSeed(cfg, "javascript:alert(1)", policy)
		if sc.Depth != 1 {
			t.Errorf("depth = %d, want 1", sc.Depth)
		}
	})
}

// TestOutputReport tests report format selection and file output.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	newReport := func() *model.CrawlReport {
		r := model.NewCrawlReport("https://docs.example.com/")
		r.SeedDomain = "example.com"
		r.Pages = []*model.Page{{URL: "https://docs.example.com/", StatusCode: 200}}
		return r
	}

	t.Run("writes JSON report to file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "out", "report.json")

		if err := outputReport(cfg, newReport()); err != nil {
			t.Fatalf("outputReport() = %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("reading report: %v", err)
		}

		var decoded struct {
			Version string             `json:"version"`
			Report  *model.CrawlReport `json:"report"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Report == nil || decoded.Report.Seed != "https://docs.example.com/" {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("writes markdown report to file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.MarkdownReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.md")

		if err := outputReport(cfg, newReport()); err != nil {
			t.Fatalf("outputReport() = %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("reading report: %v", err)
		}
		if !bytes.Contains(data, []byte("# Documentation Crawl Report")) {
			t.Errorf("unexpected markdown output: %s", data)
		}
	})

	t.Run("writes text report to file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.txt")

		if err := outputReport(cfg, newReport()); err != nil {
			t.Fatalf("outputReport() = %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("reading report: %v", err)
		}
		if !strings.Contains(string(data), "DOCSCRAPE REPORT") {
			t.Errorf("unexpected text output: %s", data)
		}
	})
}
