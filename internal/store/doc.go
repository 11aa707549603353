// Package store implements the on-disk plat-map store.
//
// The store is a flat directory of PDF files named by canonical map ID
// ("001-07.pdf"). Existence of a file at the expected path is the sole
// de-duplication signal across runs; there is no manifest. This layout is
// shared with the county's other tooling and must not change.
package store
