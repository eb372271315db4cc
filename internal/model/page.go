package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Page represents a fetched documentation page.
// It holds the response metadata and the extracted content needed for
// reporting and change detection; raw bytes are not retained beyond the
// fetch because link extraction happens inline.
type Page struct {
	// URL is the canonical URL of the page as produced by the URL engine.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the page title extracted from the <title> tag.
	// Empty for non-HTML content.
	Title string `json:"title,omitempty"`

	// Depth is the link distance from the seed URL.
	Depth int `json:"depth"`

	// Links are the canonical URLs of all valid links discovered on the
	// page, after validation and deduplication.
	Links []string `json:"links,omitempty"`

	// Assets are the canonical URLs of referenced assets (images,
	// stylesheets, scripts) that passed validation.
	Assets []string `json:"assets,omitempty"`

	// Size is the number of body bytes read, after the configured cap.
	Size int64 `json:"size"`

	// Hash is the SHA3-256 hash of the body, used for change detection
	// between crawl sessions. Empty when the body was empty.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash fills Hash from the given body bytes.
// An empty body leaves Hash empty so that "not fetched" and "fetched
// nothing" stay distinguishable in stored sessions.
func (p *Page) ComputeHash(body []byte) {
	if len(body) == 0 {
		p.Hash = ""
		return
	}
	sum := sha3.Sum256(body)
	p.Hash = hex.EncodeToString(sum[:])
}
