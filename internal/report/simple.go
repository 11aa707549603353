package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/esmgis/platcrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-community pending reference listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

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
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCommunities(&sb, summary)
	w.writeStoreBreakdown(&sb, summary)
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PLATCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run Date:    %s\n", summary.DateStarted.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:     %s\n", summary.Elapsed.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Communities: %d\n", len(summary.Communities)))

	if summary.Aborted() {
		sb.WriteString("Status:      INTERRUPTED (partial results)\n")
	} else {
		sb.WriteString("Status:      Complete\n")
	}

	sb.WriteString("\n")
}

// writeCommunities writes one section per community crawl.
func (w *SimpleWriter) writeCommunities(sb *strings.Builder, summary *model.RunSummary) {
	titler := cases.Title(language.English)

	for _, r := range summary.Communities {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		if r.Name != "" {
			sb.WriteString(fmt.Sprintf("COMMUNITY %s (%s)\n", r.Community, titler.String(r.Name)))
		} else {
			sb.WriteString(fmt.Sprintf("COMMUNITY %s\n", r.Community))
		}
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n\n")

		sb.WriteString(fmt.Sprintf("  Seed:                %s\n", r.SeedID))
		sb.WriteString(fmt.Sprintf("  Traversal:           %d fetched, %d failed\n", r.TraversalProcessed, r.TraversalFailed))
		sb.WriteString(fmt.Sprintf("  Systematic sweep:    %d found\n", len(r.DiscoveredIDs)))
		sb.WriteString(fmt.Sprintf("  Backfill:            %d fetched, %d failed\n", r.AdditionalProcessed, r.AdditionalFailed))
		sb.WriteString(fmt.Sprintf("  Phase total:         %d\n", r.TotalProcessed()))

		if r.Aborted {
			sb.WriteString("  Status:              INTERRUPTED\n")
		} else if r.ErrorMessage != "" {
			sb.WriteString(fmt.Sprintf("  Status:              ERROR - %s\n", r.ErrorMessage))
		}

		if w.verbose && len(r.PendingRefIDs) > 0 {
			sb.WriteString(fmt.Sprintf("  Backfilled refs:     %s\n", strings.Join(r.PendingRefIDs, ", ")))
		}

		sb.WriteString("\n")
	}
}

// writeStoreBreakdown writes the exact per-community document counts.
func (w *SimpleWriter) writeStoreBreakdown(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STORED DOCUMENTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	communities := make([]string, 0, len(summary.StoredByCommunity))
	for c := range summary.StoredByCommunity {
		communities = append(communities, c)
	}
	sort.Strings(communities)

	for _, c := range communities {
		sb.WriteString(fmt.Sprintf("  %s-XX: %d maps\n", c, summary.StoredByCommunity[c]))
	}

	sb.WriteString(fmt.Sprintf("\n  TOTAL: %d maps\n\n", summary.TotalStored))
}

// writeFooter writes the closing totals line.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Phase totals: %d processed, %d failed (additive across phases)\n",
		summary.TotalProcessed(), summary.TotalFailed()))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
