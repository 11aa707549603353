// Package extract pulls cross-reference map IDs out of plat map text.
//
// Surveyors annotate plat sheets with references to adjacent sheets, in
// two textual shapes: the full form ("001-07") and a bare sheet numeral
// ("7" or "07") that implies the current community. The extractor runs
// one pass per shape, merges the candidates, and keeps only plausible
// same-community neighbors. Sheets with too few readable references fall
// back to positional guessing so the traversal never dead-ends on a
// poorly scanned page.
package extract
