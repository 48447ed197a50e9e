// Package kernel implements the columnar data primitives shared by every
// other layer: typed nullable arrays, bitmasks, record batches, and the
// byte-level codecs used by the storage and planner layers.
package kernel

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrDivideByZero is raised by integer and float division when the
	// divisor is zero. It is a domain error per spec.md §7: it aborts the
	// statement rather than panicking.
	ErrDivideByZero = errors.NewKind("division by zero")
	// ErrInvalidCast is raised when a cast between data types is lossy or
	// ill-defined.
	ErrInvalidCast = errors.NewKind("invalid cast from %s to %s")
	// ErrLengthMismatch is raised when arrays that must share a length
	// (a record batch's columns, an array and a gather index) don't.
	ErrLengthMismatch = errors.NewKind("length mismatch: %d != %d")
	// ErrIndexOutOfRange is raised by gather/scatter on an out-of-bounds index.
	ErrIndexOutOfRange = errors.NewKind("index %d out of range for length %d")
	// ErrUnsupportedType is raised when an operator is asked to act on a
	// DataType it has no case for. Reaching this indicates a broken
	// invariant elsewhere (an internal error, not a domain error).
	ErrUnsupportedType = errors.NewKind("unsupported data type: %s")
)
