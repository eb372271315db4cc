// Package model defines the data structures shared across the crawler:
// fetched documentation pages, per-site crawl reports, and the link
// rejection records produced by the URL engine.
package model
