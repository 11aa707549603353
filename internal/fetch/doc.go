// Package fetch implements the origin fetch gateway.
//
// The gateway downloads one plat map per logical ID by substituting the
// canonical ID string into a fixed URL template, and writes the response
// body to the store. It is idempotent: an ID already present in the store
// is reported as success without a network round-trip, which makes it the
// safe unit of retry for every crawl phase.
package fetch
