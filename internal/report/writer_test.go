package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// testReport builds a small report used across writer tests.
func testReport() *model.CrawlReport {
	r := model.NewCrawlReport("https://docs.example.com/")
	r.Seed = "https://docs.example.com/"
	r.SeedDomain = "example.com"
	r.Started = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.Elapsed = 1500 * time.Millisecond
	r.InternalLinks = 3
	r.ExternalLinks = 1
	r.Pages = []*model.Page{
		{URL: "https://docs.example.com/", StatusCode: 200, Title: "Docs Home", Depth: 0},
		{URL: "https://docs.example.com/missing", StatusCode: 404, Depth: 1},
	}
	r.Rejected = []model.RejectedLink{
		{Raw: "javascript:alert(1)", SourceURL: "https://docs.example.com/", Reason: "blocked scheme"},
		{Raw: "javascript:void(0)", SourceURL: "https://docs.example.com/", Reason: "blocked scheme"},
		{Raw: "http://127.0.0.1/admin", SourceURL: "https://docs.example.com/", Reason: "private host not allowed"},
	}
	return r
}

// TestSimpleWriter tests the human-readable text output.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(testReport())
		if err != nil {
			t.Fatalf("Write() = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"DOCSCRAPE REPORT",
			"https://docs.example.com/",
			"Pages crawled:    2",
			"Internal links:   3",
			"Status:         Complete",
			"[404] https://docs.example.com/missing",
			"[2] blocked scheme",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("verbose lists every page and rejection", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("Write() = %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[200] https://docs.example.com/") {
			t.Error("expected 200 pages listed in verbose mode")
		}
		if !strings.Contains(out, "Source: https://docs.example.com/") {
			t.Error("expected rejection details in verbose mode")
		}
	})

	t.Run("reports errors and timeouts", func(t *testing.T) {
		t.Parallel()

		r := testReport()
		r.Error = "invalid seed"

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatalf("Write() = %v", err)
		}
		if !strings.Contains(buf.String(), "ERROR - invalid seed") {
			t.Error("expected error status")
		}

		r = testReport()
		r.TimedOut = true
		buf.Reset()
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatalf("Write() = %v", err)
		}
		if !strings.Contains(buf.String(), "TIMED OUT") {
			t.Error("expected timeout status")
		}
	})
}

// TestJSONWriter tests the JSON output formats.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testReport()); err != nil {
			t.Fatalf("Write() = %v", err)
		}

		var decoded model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Seed != "https://docs.example.com/" {
			t.Errorf("seed = %q", decoded.Seed)
		}
		if len(decoded.Rejected) != 3 {
			t.Errorf("rejected = %d, want 3", len(decoded.Rejected))
		}
	})

	t.Run("pretty print adds indentation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testReport()); err != nil {
			t.Fatalf("Write() = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"seed\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps with metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")
		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("Write() = %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("version = %q", wrapped.Version)
		}
		if len(wrapped.Rejections) == 0 || wrapped.Rejections[0].Reason != "blocked scheme" {
			t.Errorf("rejections = %+v", wrapped.Rejections)
		}
	})
}

// TestMarkdownWriter tests the Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(testReport()); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Documentation Crawl Report",
		"## Crawl Summary",
		"## Pages",
		"## Rejected Links",
		"blocked scheme",
		"`https://docs.example.com/`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

// failingWriter always returns an error, for MultiWriter tests.
type failingWriter struct{}

func (failingWriter) Write(_ *model.CrawlReport) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, jsonBuf bytes.Buffer
		mw := NewMultiWriter(
			NewSimpleWriter(&text),
			NewJSONWriter(&jsonBuf),
		)

		n, err := mw.Write(testReport())
		if err != nil {
			t.Fatalf("Write() = %v", err)
		}
		if n != text.Len()+jsonBuf.Len() {
			t.Errorf("total = %d, want %d", n, text.Len()+jsonBuf.Len())
		}
		if text.Len() == 0 || jsonBuf.Len() == 0 {
			t.Error("expected output in both writers")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))

		if _, err := mw.Write(testReport()); err == nil {
			t.Fatal("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})

	t.Run("truncateString shortens long values", func(t *testing.T) {
		t.Parallel()

		if got := truncateString("abcdef", 5); got != "ab..." {
			t.Errorf("truncateString = %q", got)
		}
		if got := truncateString("abc", 5); got != "abc" {
			t.Errorf("truncateString = %q", got)
		}
	})
}
