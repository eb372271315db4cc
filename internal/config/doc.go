// Package config provides configuration structures and utilities for the
// docscrape crawler. It defines the crawl settings, the YAML configuration
// file with per-site overrides, and the URL policy mapping that controls
// which discovered links are accepted for fetching.
package config
