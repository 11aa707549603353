// Package pipeline sequences the four phases of a hybrid community
// crawl and drives them across multiple communities.
//
// Phase order matters: traversal first (it is cheap when the reference
// graph is dense), then the systematic sweep (it catches unlinked
// sheets), then a re-extraction pass over everything the sweep found,
// then a backfill fetch of any reference still missing from the store.
// Each phase reads what the previous phases wrote into the community
// report.
package pipeline
