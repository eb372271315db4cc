// Package database provides SQLite-based persistence for crawl sessions.
// Stored pages and rejected links allow comparing crawls over time and
// re-validating previously discovered URLs against a newer policy.
package database
