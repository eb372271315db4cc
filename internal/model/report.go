package model

import (
	"sort"
	"time"
)

// RejectedLink records one link the URL engine refused to enqueue.
// The reason is the engine's deterministic error message, which doubles as
// the aggregation key for reporting.
type RejectedLink struct {
	// Raw is the link text as it appeared in the page.
	Raw string `json:"raw"`

	// SourceURL is the page the link was found on.
	SourceURL string `json:"source_url"`

	// Reason is the validation error message.
	Reason string `json:"reason"`
}

// CrawlReport is the result of crawling one documentation site.
//
// Design decision: We use a single flat struct rather than nested
// sub-reports because the report is written once at the end of a crawl
// and consumed whole by every writer; nesting would only complicate
// serialization and database storage.
type CrawlReport struct {
	// Seed is the canonical URL the crawl started from.
	Seed string `json:"seed"`

	// SeedDomain is the registered domain of the seed, used by the scope
	// filter to classify links as internal or external.
	SeedDomain string `json:"seed_domain"`

	// Started is when the crawl began.
	Started time.Time `json:"started"`

	// Elapsed is the total crawl duration.
	Elapsed time.Duration `json:"elapsed"`

	// Pages are all successfully fetched pages in crawl order.
	Pages []*Page `json:"pages"`

	// InternalLinks counts valid links pointing inside the seed's
	// registered domain.
	InternalLinks int `json:"internal_links"`

	// ExternalLinks counts valid links pointing at other domains.
	ExternalLinks int `json:"external_links"`

	// Rejected are links the URL engine refused, kept for diagnostics.
	Rejected []RejectedLink `json:"rejected,omitempty"`

	// FetchErrors counts pages that validated but failed to fetch.
	FetchErrors int `json:"fetch_errors"`

	// TimedOut is true when the crawl was cancelled before completing.
	TimedOut bool `json:"timed_out"`

	// Error holds a crawl-level failure, such as an invalid seed.
	Error string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for the given seed URL.
func NewCrawlReport(seed string) *CrawlReport {
	return &CrawlReport{
		Seed:    seed,
		Started: time.Now(),
		Pages:   make([]*Page, 0),
	}
}

// PagesCrawled returns the number of fetched pages.
func (r *CrawlReport) PagesCrawled() int {
	return len(r.Pages)
}

// LinksDiscovered returns the total number of valid links seen.
func (r *CrawlReport) LinksDiscovered() int {
	return r.InternalLinks + r.ExternalLinks
}

// RejectionCounts aggregates rejected links by reason, most frequent
// first. Reasons with equal counts sort alphabetically so the output is
// stable across runs.
func (r *CrawlReport) RejectionCounts() []RejectionCount {
	counts := make(map[string]int)
	for _, rej := range r.Rejected {
		counts[rej.Reason]++
	}

	out := make([]RejectionCount, 0, len(counts))
	for reason, n := range counts {
		out = append(out, RejectionCount{Reason: reason, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// RejectionCount is one aggregated rejection reason.
type RejectionCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}
