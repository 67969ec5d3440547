// Package state owns the on-disk stores a publishing cycle mutates: the
// fingerprint window and the image usage counts.
//
// A cycle holds the cycle lock for its whole duration, loads a Snapshot,
// mutates it in memory, and commits it with write-new-then-swap. Each store
// carries a version; committing a snapshot whose versions no longer match
// disk fails with ErrStaleSnapshot and writes nothing.
package state
