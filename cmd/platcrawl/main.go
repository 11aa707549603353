// Package main provides the entry point for the platcrawl CLI.
//
// Platcrawl downloads the plat map archive of Esmeralda County, Nevada
// from the county assessor's property site. It follows cross-references
// between sheets, sweeps each community's sequence numbers for unlinked
// sheets, and stores everything as PDF files named by map ID.
//
// Usage:
//
//	platcrawl crawl
//	platcrawl crawl 001 002
//	platcrawl status
//
// See --help for all available options.
package main

// main is the entry point for platcrawl.
func main() {
	Execute()
}
