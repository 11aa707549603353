// Package log provides the application's logging setup, built on top of
// the standard slog package.
//
// This package extends slog with a CountingHandler that tallies records
// per level as they pass through. The crawl phases report per-document
// failures as warnings rather than errors, so the final exit status and
// report trailer are derived from these counts instead of threading a
// counter through every component.
//
// # Usage
//
//	logger, counter := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Warn("fetch failed", "id", "001-07")
//
//	if counter.WarnCount() > 0 {
//	    fmt.Printf("completed with %d warnings\n", counter.WarnCount())
//	}
package log
