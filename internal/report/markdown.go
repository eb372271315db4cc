package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeRejections(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Documentation Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.Seed + "`"},
			{"Site Domain", report.SeedDomain},
			{"Crawl Date", report.Started.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(10 * time.Millisecond).String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.CrawlReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the crawl counters section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(report.PagesCrawled())},
			{"Internal links", strconv.Itoa(report.InternalLinks)},
			{"External links", strconv.Itoa(report.ExternalLinks)},
			{"Rejected links", strconv.Itoa(len(report.Rejected))},
			{"Fetch errors", strconv.Itoa(report.FetchErrors)},
		},
	})
	md.PlainText("")

	if report.LinksDiscovered() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for link distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CrawlReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Distribution"),
		piechart.WithShowData(true),
	)

	if report.InternalLinks > 0 {
		chart.LabelAndIntValue("Internal", uint64(report.InternalLinks))
	}
	if report.ExternalLinks > 0 {
		chart.LabelAndIntValue("External", uint64(report.ExternalLinks))
	}
	if len(report.Rejected) > 0 {
		chart.LabelAndIntValue("Rejected", uint64(len(report.Rejected)))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch {
	case report.Error != "":
		md.Cautionf("The crawl failed: %s", report.Error)
	case report.TimedOut:
		md.Warningf("The crawl timed out after %d page(s); results are partial.", report.PagesCrawled())
	case report.FetchErrors > 0:
		md.Importantf("%d page(s) failed to fetch and are missing from the report.", report.FetchErrors)
	case len(report.Rejected) > 0:
		md.Note(fmt.Sprintf("%d link(s) were rejected by URL validation. See the rejected links section.", len(report.Rejected)))
	default:
		md.Tip("All discovered links passed validation.")
	}
	md.PlainText("")
}

// writePages writes the fetched page listing.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	if report.PagesCrawled() == 0 {
		md.PlainText("No pages crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, page := range report.Pages {
		title := page.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			strconv.Itoa(page.StatusCode),
			strconv.Itoa(page.Depth),
			"`" + truncateString(page.URL, 80) + "`",
			truncateString(title, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Depth", "URL", "Title"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRejections writes rejected links grouped by reason.
func (w *MarkdownWriter) writeRejections(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Rejected Links")
	md.PlainText("")

	if len(report.Rejected) == 0 {
		md.PlainText("No links rejected.")
		md.PlainText("")
		return
	}

	counts := report.RejectionCounts()
	rows := make([][]string, len(counts))
	for i, rc := range counts {
		rows[i] = []string{rc.Reason, strconv.Itoa(rc.Count)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Reason", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	rejRows := make([][]string, len(report.Rejected))
	for i, rej := range report.Rejected {
		rejRows[i] = []string{
			"`" + truncateString(rej.Raw, 60) + "`",
			"`" + truncateString(rej.SourceURL, 60) + "`",
			rej.Reason,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Link", "Source Page", "Reason"},
		Rows:   rejRows,
	})
	md.PlainText("")
}

// truncateString shortens a string to the given length, adding an
// ellipsis when truncation happens.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
