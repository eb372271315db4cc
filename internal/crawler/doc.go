// Package crawler provides web crawling for documentation sites.
//
// # Architecture
//
// The crawler is designed around the Spider type, which coordinates the
// crawling process. It manages a breadth-first queue of discovered links
// and respects depth, page-count, and politeness settings.
//
// Every discovered link passes through the urlinfo engine before it is
// queued: the Spider never fetches a URL that the engine did not validate,
// and it deduplicates the frontier using the engine's comparison hash so
// that textually different spellings of the same page are fetched once.
//
// # Components
//
//   - Spider: coordinates fetching, validation, and the frontier
//   - Parser: HTML parser that extracts links, asset references, and titles
//
// # Politeness
//
//   - Delays between requests (configurable)
//   - Respects max depth and max page settings
//   - Memory limits prevent large responses from exhausting the process
//
// # Usage
//
//	spider := crawler.NewSpider(httpClient, crawler.WithMaxDepth(3))
//	report, err := spider.Crawl(ctx, "https://docs.example.com/")
package crawler
