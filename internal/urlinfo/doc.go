// Package urlinfo implements the URL handling engine used by the crawler.
// It parses, validates, and canonicalizes every discovered link before the
// link is ever queued for a network fetch.
//
// The engine is both a security boundary and a correctness boundary:
//   - Security: dangerous schemes, path traversal, embedded null bytes,
//     markup injection, credentials in the authority, and private/loopback
//     hosts are rejected according to an immutable Policy.
//   - Correctness: semantically identical links that differ textually
//     (host case, default ports, dot-segments, fragments) canonicalize to
//     the same normalized string, so the crawl frontier can deduplicate.
//
// The central type is URLInfo, an immutable value object computed entirely
// at construction time. Construction never fails: malformed input produces
// an instance with IsValid() == false and a diagnostic ErrorMessage(),
// never an error return or a panic. A single malformed discovered link must
// never terminate a multi-thousand-page crawl.
//
// # Usage
//
//	u := urlinfo.New("page2.html", urlinfo.WithBase("https://example.com/docs/"))
//	if u.IsValid() {
//	    frontier.Enqueue(u.Normalized())
//	}
//
// Construction is a pure, synchronous computation over in-memory strings.
// Instances share only the read-only Policy and the public suffix dataset,
// so crawl workers may construct URLInfo values concurrently without locks.
package urlinfo
