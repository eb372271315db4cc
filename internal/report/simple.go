package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables the full page listing and per-link rejection
	// details instead of summaries.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeRejections(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         DOCSCRAPE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed URL:       %s\n", report.Seed))
	sb.WriteString(fmt.Sprintf("Site Domain:    %s\n", report.SeedDomain))
	sb.WriteString(fmt.Sprintf("Crawl Date:     %s\n", report.Started.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:        %s\n", report.Elapsed.Round(10*time.Millisecond)))

	if report.TimedOut {
		sb.WriteString("Status:         TIMED OUT (partial results)\n")
	} else if report.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.Error))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the crawl counters section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages crawled:    %d\n", report.PagesCrawled()))
	sb.WriteString(fmt.Sprintf("  Internal links:   %d\n", report.InternalLinks))
	sb.WriteString(fmt.Sprintf("  External links:   %d\n", report.ExternalLinks))
	sb.WriteString(fmt.Sprintf("  Rejected links:   %d\n", len(report.Rejected)))
	sb.WriteString(fmt.Sprintf("  Fetch errors:     %d\n", report.FetchErrors))
	sb.WriteString("\n")
}

// writePages writes the fetched page listing. In non-verbose mode, only
// pages with non-200 status are listed individually.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	if report.PagesCrawled() == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.PagesCrawled() == 0 {
		sb.WriteString("  No pages crawled\n\n")
		return
	}

	for _, page := range report.Pages {
		if !w.verbose && page.StatusCode == 200 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", page.StatusCode, page.URL))
		if w.verbose && page.Title != "" {
			sb.WriteString(fmt.Sprintf("      Title: %s\n", page.Title))
		}
	}
	if !w.verbose {
		sb.WriteString(fmt.Sprintf("  (%d pages with status 200 not listed; use verbose output)\n", w.okPages(report)))
	}
	sb.WriteString("\n")
}

// okPages counts pages that returned status 200.
func (w *SimpleWriter) okPages(report *model.CrawlReport) int {
	var n int
	for _, page := range report.Pages {
		if page.StatusCode == 200 {
			n++
		}
	}
	return n
}

// writeRejections writes rejected links grouped by reason.
func (w *SimpleWriter) writeRejections(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Rejected) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("REJECTED LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Rejected) == 0 {
		sb.WriteString("  No links rejected\n\n")
		return
	}

	for _, rc := range report.RejectionCounts() {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", rc.Count, rc.Reason))
	}
	sb.WriteString("\n")

	if w.verbose {
		for _, rej := range report.Rejected {
			sb.WriteString(fmt.Sprintf("  * %s\n", rej.Raw))
			sb.WriteString(fmt.Sprintf("    Source: %s\n", rej.SourceURL))
			sb.WriteString(fmt.Sprintf("    Reason: %s\n", rej.Reason))
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by docscrape\n")
	sb.WriteString("https://github.com/VespianRex/lib2docscrape\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
