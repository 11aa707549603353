package report

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/esmgis/platcrawl/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
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

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCommunities(md, summary)
	w.writeStoreBreakdown(md, summary)
	w.writeAlert(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("Plat Map Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run Date", summary.DateStarted.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", summary.Elapsed.String()},
			{"Communities", strconv.Itoa(len(summary.Communities))},
			{"Stored Documents", strconv.Itoa(summary.TotalStored)},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(summary *model.RunSummary) string {
	if summary.Aborted() {
		return "⚠️ Interrupted (partial results)"
	}
	return "✅ Complete"
}

// writeCommunities writes the per-community results table.
func (w *MarkdownWriter) writeCommunities(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Community Results")
	md.PlainText("")

	titler := cases.Title(language.English)

	rows := make([][]string, 0, len(summary.Communities))
	for _, r := range summary.Communities {
		name := r.Community
		if r.Name != "" {
			name = r.Community + " (" + titler.String(r.Name) + ")"
		}

		status := "OK"
		if r.Aborted {
			status = "Interrupted"
		} else if r.ErrorMessage != "" {
			status = "Error: " + r.ErrorMessage
		}

		rows = append(rows, []string{
			name,
			"`" + r.SeedID + "`",
			strconv.Itoa(r.TraversalProcessed),
			strconv.Itoa(r.TraversalFailed),
			strconv.Itoa(len(r.DiscoveredIDs)),
			strconv.Itoa(r.AdditionalProcessed),
			status,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Community", "Seed", "Traversed", "Failed", "Swept", "Backfilled", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range summary.Communities {
		if len(r.PendingRefIDs) == 0 {
			continue
		}
		md.PlainTextf("Backfilled references for %s: %s", r.Community, strings.Join(r.PendingRefIDs, ", "))
		md.PlainText("")
	}
}

// writeStoreBreakdown writes the stored-document pie chart and totals.
func (w *MarkdownWriter) writeStoreBreakdown(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Stored Documents")
	md.PlainText("")

	if summary.TotalStored == 0 {
		md.PlainText("The store is empty.")
		md.PlainText("")
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Documents per Community"),
		piechart.WithShowData(true),
	)

	communities := make([]string, 0, len(summary.StoredByCommunity))
	for c := range summary.StoredByCommunity {
		communities = append(communities, c)
	}
	sort.Strings(communities)

	for _, c := range communities {
		chart.LabelAndIntValue(c, uint64(summary.StoredByCommunity[c]))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the failure counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.Aborted():
		md.Warningf("The run was interrupted; %d documents were stored before the stop.", summary.TotalStored)
	case summary.TotalFailed() > 0:
		md.Notef("%d fetches failed. Referenced sheets the origin has no document for are expected; re-run to retry transient failures.", summary.TotalFailed())
	default:
		md.Tip("All fetches succeeded.")
	}
	md.PlainText("")
}
