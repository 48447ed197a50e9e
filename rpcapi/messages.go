// Package rpcapi defines the wire message shapes for the coordinator's
// and workers' RPC verbs (spec.md §6). Transport itself (gRPC, HTTP,
// whatever carries these structs between processes) is out of scope per
// spec.md's Non-goals; these are the payloads a transport would
// serialize, grounded on zeedb:rpc's message shapes.
package rpcapi

import "github.com/dolthub/zeeql/kernel"

// ---- coordinator verbs ----

// CheckRequest asks the coordinator whether a previously submitted
// query/statement is done (spec.md §5.2 "check").
type CheckRequest struct {
	Txn int64
}

type CheckResponse struct {
	Done  bool
	Error string
}

// QueryRequest submits a read-only SQL query for planning and execution
// (spec.md §5.2 "query").
type QueryRequest struct {
	SQL    string
	Params []Param
}

type QueryResponse struct {
	Txn int64
}

// StatementRequest submits a DDL/DML statement (spec.md §5.2 "statement").
type StatementRequest struct {
	Txn int64
	SQL string
	Params []Param
}

type StatementResponse struct {
	RowsAffected int64
}

// TraceRequest asks for the span tree recorded for a txn (spec.md §5.2
// "trace", supplemented from original_source's scoped-span tracing).
type TraceRequest struct {
	Txn int64
}

type TraceResponse struct {
	Spans []Span
}

type Span struct {
	Operation string
	DurationMicros int64
	Children  []Span
}

// Param is one bound parameter value for a parameterized statement.
type Param struct {
	Name  string
	Value interface{}
	Type  kernel.DataType
}

// ---- worker verbs ----

// StatsRequest asks a worker for its local TableStatistics over table, as
// visible at txn (SPEC_FULL.md's cross-worker statistics merge, feeding
// the coordinator's memo.Catalog adapter).
type StatsRequest struct {
	Table string
	Txn   int64
}

type StatsResponse struct {
	RowCount int64
	Columns  []ColumnStats
}

// ColumnStats is one column's statistics, wire-encoded via stats.HLL's and
// stats.Histogram's own Registers/Boundaries accessors rather than
// reaching into their unexported fields.
type ColumnStats struct {
	ColumnID            int64
	Registers           []byte
	HistogramBoundaries [][]byte
	HistogramRows       int64
}

// SubmitRequest hands a worker one stage of a distributed plan to run
// (spec.md §5.3 "submit"). PlanPayload is an opaque blob: nothing in
// this module encodes or decodes a plan into it, and Worker.Submit takes
// the stage plan as a separate plan.Node argument.
type SubmitRequest struct {
	Txn         int64
	StageID     int
	PlanPayload []byte
	Params      []Param
}

type SubmitResponse struct {
	Batches []BatchPayload
}

// BroadcastRequest tells a worker to publish Batch to every subscriber
// of Topic (spec.md §5.4 "broadcast").
type BroadcastRequest struct {
	Topic string
	Batch BatchPayload
}

type BroadcastResponse struct{}

// ExchangeRequest tells a worker to repartition Batch by hash(HashColumns)
// across Topic's subscribers (spec.md §5.4 "exchange").
type ExchangeRequest struct {
	Topic       string
	HashColumns []string
	Batch       BatchPayload
}

type ExchangeResponse struct{}

// BatchPayload is a transport-serializable stand-in for a
// kernel.RecordBatch. EncodeBatch/DecodeBatch (codec.go) gob-encode each
// column into its own Columns entry; framing the payload itself is left
// to the transport layer, out of scope per spec.md.
type BatchPayload struct {
	Names   []string
	Columns [][]byte // one opaque encoded column per name, same order
}
