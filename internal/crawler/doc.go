// Package crawler implements the two discovery strategies over a
// community's map sequence.
//
// The BFS crawler follows cross-references found in downloaded sheets,
// so it reaches exactly the connected component of the seed. The
// systematic prober sweeps sequence numbers in order until a run of
// consecutive failures suggests the tail of the sequence has been
// reached. The two are complementary: traversal finds well-annotated
// clusters, probing finds sheets nothing links to.
//
// Both strategies share a Throttle so the origin sees one polite request
// rate no matter which phase, or how many communities, are in flight.
package crawler
