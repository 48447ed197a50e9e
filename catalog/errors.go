package catalog

import "gopkg.in/src-d/go-errors.v1"

var (
	ErrTableExists  = errors.NewKind("table already exists: %s")
	ErrNoSuchTable  = errors.NewKind("table not found: %s")
	ErrNoSuchColumn = errors.NewKind("column not found: %s")
	ErrIndexExists  = errors.NewKind("index already exists: %s")
)
