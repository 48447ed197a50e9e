package plan

import "gopkg.in/src-d/go-errors.v1"

// ErrChildCount guards WithChildren against a caller passing the wrong
// arity, matching the panic/error pattern the teacher's sql.Node
// implementations use for the same mistake.
var ErrChildCount = errors.NewKind("expected %d children, got %d")
