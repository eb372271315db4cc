package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestConfigValidate tests fail-fast configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.Seeds = []string{"https://docs.example.com/"}
		return c
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()

		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no seeds", func(c *Config) { c.Seeds = nil }, ErrNoSeed},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"conflicting formats", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
		{"negative crawl delay", func(c *Config) { c.CrawlDelay = -1 }, ErrInvalidCrawlDelay},
		{"negative max body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLoadConfigFile tests YAML config loading and policy overrides.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("got %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("loads sites and policy", func(t *testing.T) {
		t.Parallel()

		content := `
sites:
  docs.example.com:
    depth: 3
    headers:
      Authorization: "Bearer token"
defaults:
  depth: 2
policy:
  allowFragments: true
  maxLength: 4096
  allowedSchemes: [https]
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() = %v", err)
		}

		site := cf.GetSiteConfig("docs.example.com")
		if site.Depth != 3 {
			t.Errorf("site depth = %d, want 3", site.Depth)
		}
		if site.Headers["Authorization"] == "" {
			t.Error("site headers not merged")
		}

		other := cf.GetSiteConfig("other.example.com")
		if other.Depth != 2 {
			t.Errorf("default depth = %d, want 2", other.Depth)
		}

		p := cf.Policy.BuildPolicy()
		if !p.AllowFragments {
			t.Error("allowFragments override not applied")
		}
		if p.MaxLength != 4096 {
			t.Errorf("maxLength = %d, want 4096", p.MaxLength)
		}
		if !p.AllowedSchemes["https"] || len(p.AllowedSchemes) != 1 {
			t.Errorf("allowedSchemes = %v, want https only", p.AllowedSchemes)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("built policy invalid: %v", err)
		}
	})

	t.Run("nil policy spec yields defaults", func(t *testing.T) {
		t.Parallel()

		var spec *PolicySpec
		p := spec.BuildPolicy()
		if p.MaxLength == 0 || p.AllowAuth {
			t.Error("nil spec should produce the default policy")
		}
	})
}
