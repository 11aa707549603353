// Package report renders run summaries for humans and tools.
//
// Three formats are provided: plain text for the terminal, JSON for
// scripting, and Markdown for sharing with the county's GIS group.
// All writers consume the same RunSummary, so every format shows the
// same numbers.
package report
