// Package database provides SQLite-based run history storage.
//
// The store directory is the source of truth for the documents
// themselves; the database only records what each run did (per-community
// counts, the full summary JSON) and a content hash per stored document,
// so that later runs and the status command can answer "when was this
// fetched, and has it changed" without re-downloading anything.
//
// History is an optional concern: the crawl proceeds normally when the
// database cannot be opened.
package database
