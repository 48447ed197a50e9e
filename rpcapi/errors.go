package rpcapi

import "gopkg.in/src-d/go-errors.v1"

// ErrBadColumnEncoding reports a BatchPayload.Columns entry that doesn't
// gob-decode into a wireColumn, or decodes to an unrecognized DataType —
// always an internal protocol error between coordinator and worker, never
// a user input mistake.
var ErrBadColumnEncoding = errors.NewKind("bad column encoding: %v")
