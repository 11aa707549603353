// Package model defines the core data types for platcrawl.
//
// It contains the MapID value object that addresses a single plat map,
// the per-community crawl report, the whole-run summary, and the stored
// document record used for change detection across runs. Types in this
// package are pure data: they carry no I/O and no external dependencies.
package model
