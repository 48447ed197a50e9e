// Package storage implements the MVCC storage engine: PAX pages and
// heaps carrying per-row transaction visibility stamps, an adaptive radix
// trie secondary index, and a per-table storage root (spec.md §3, §4.3).
package storage

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNotFound is raised when a table, index, or column isn't in the
	// catalog; surfaced to the client as "invalid argument" (spec.md §7).
	ErrNotFound = errors.NewKind("not found: %s")
	// ErrAlreadyExists guards against double-registering a table/index id.
	ErrAlreadyExists = errors.NewKind("already exists: %s")
)
