// Package querystate holds the per-transaction scratch a worker threads
// through plan execution: session variables, temp tables, a statistics
// handle, and tracing/logging context (spec.md §5.2, §7), grounded on
// the teacher's sql.Context (opentracing.Tracer-backed spans, a
// logrus.Entry for structured logging) generalized from per-statement to
// per-transaction scope, since a script (spec.md §7) threads state across
// several statements sharing one txn.
package querystate

import (
	"context"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/stats"
)

// State is the scratch space for one transaction's execution.
type State struct {
	context.Context

	Txn    int64
	Tracer opentracing.Tracer
	Log    *logrus.Entry

	mu        sync.RWMutex
	variables map[string]interface{}
	tempTables map[string]*kernel.RecordBatch
	tableStats map[string]*stats.TableStatistics
}

// New builds a State for txn, wrapping parent for cancellation/deadline
// propagation (matches sql.Context's embedding of context.Context).
func New(parent context.Context, txn int64, tracer opentracing.Tracer, log *logrus.Entry) *State {
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &State{
		Context:    parent,
		Txn:        txn,
		Tracer:     tracer,
		Log:        log.WithField("txn", txn),
		variables:  make(map[string]interface{}),
		tempTables: make(map[string]*kernel.RecordBatch),
		tableStats: make(map[string]*stats.TableStatistics),
	}
}

// Span starts a child span named op, scoped to the caller via a deferred
// Finish (spec.md §7's "scoped trace spans" supplement from
// original_source, since spec.md's distillation mentions tracing only in
// passing).
func (s *State) Span(op string) (opentracing.Span, func()) {
	span := s.Tracer.StartSpan(op)
	return span, span.Finish
}

func (s *State) SetVariable(name string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables[name] = value
}

func (s *State) Variable(name string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variables[name]
	return v, ok
}

func (s *State) SetTempTable(name string, batch *kernel.RecordBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempTables[name] = batch
}

func (s *State) TempTable(name string) (*kernel.RecordBatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.tempTables[name]
	return b, ok
}

func (s *State) SetTableStatistics(table string, st *stats.TableStatistics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tableStats[table] = st
}

func (s *State) TableStatistics(table string) *stats.TableStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tableStats[table]
}
