// Package exec implements the vectorized pull-iterator runtime: every
// physical plan.Node compiles to an Operator, and a parent pulls batches
// from its children on demand (spec.md §4.5), grounded on the teacher's
// sql.RowIter pull-iterator contract generalized from row-at-a-time to
// batch-at-a-time (kernel.RecordBatch) for the columnar engine.
package exec

import (
	"io"

	"github.com/dolthub/zeeql/kernel"
)

// Operator is a batch-at-a-time pull iterator. Next returns io.EOF (not
// wrapped) when exhausted, matching the teacher's sql.RowIter contract.
type Operator interface {
	Next() (*kernel.RecordBatch, error)
	Close() error
}

// End is a sentinel alias for io.EOF, kept for readability at call sites
// that want to name the contract explicitly (spec.md §4.5 "Page / Error
// / End").
var End = io.EOF
