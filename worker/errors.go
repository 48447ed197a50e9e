package worker

import "gopkg.in/src-d/go-errors.v1"

// ErrMissingParam reports a ParamRef whose index has no corresponding
// entry in the params slice supplied with a submit request — always an
// internal protocol error between coordinator and worker, never a user
// input mistake (the coordinator binds params from the client's values).
var ErrMissingParam = errors.NewKind("missing parameter %d")
