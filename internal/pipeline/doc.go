// Package pipeline orchestrates a crawl run as an ordered sequence of
// steps operating on a shared CrawlReport, plus an errgroup-based batch
// processor for crawling multiple seed sites concurrently.
package pipeline
