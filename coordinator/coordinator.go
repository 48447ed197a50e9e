// Package coordinator implements the coordinator's half of spec.md §5:
// transaction allocation, the check and query verbs (Check, QueryPlan),
// and fanning a distributed plan out to workers over their submit verb.
// The statement and trace verbs have message types in rpcapi but no
// handler here. Grounded on the teacher's
// Engine/Config lifecycle shape (a struct holding long-lived
// dependencies, constructed once, exercised per request) and
// golang.org/x/sync/errgroup for concurrent worker fan-out, the same
// pattern the rest of the corpus uses for bounded concurrent RPC calls.
package coordinator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dolthub/zeeql/catalog"
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/planner/distribute"
	"github.com/dolthub/zeeql/planner/memo"
	"github.com/dolthub/zeeql/planner/rewrite"
	"github.com/dolthub/zeeql/rpcapi"
	"github.com/dolthub/zeeql/stats"
	"github.com/dolthub/zeeql/storage"
)

// WorkerClient is the coordinator's view of one worker process (spec.md
// §5.3's three worker verbs); the transport implementing it is out of
// scope, matching rpcapi's payload-only design.
type WorkerClient interface {
	Submit(ctx context.Context, req rpcapi.SubmitRequest) (rpcapi.SubmitResponse, error)
	Stats(ctx context.Context, req rpcapi.StatsRequest) (rpcapi.StatsResponse, error)
}

// Coordinator allocates transactions, plans+rewrites+distributes
// queries, and fans each stage out to its assigned workers (spec.md §5).
type Coordinator struct {
	Catalog *catalog.Catalog
	Workers []WorkerClient
	Log     *logrus.Entry

	txnSeq int64

	mu    sync.Mutex
	state map[int64]*txnState
}

type txnState struct {
	done  bool
	err   error
	rows  []*kernel.RecordBatch
}

func New(cat *catalog.Catalog, workers []WorkerClient, log *logrus.Entry) *Coordinator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Coordinator{Catalog: cat, Workers: workers, Log: log, state: make(map[int64]*txnState)}
}

// NewTxn allocates a fresh, process-wide unique transaction id (spec.md
// §5.1: "monotonically increasing via atomic fetch-add").
func (c *Coordinator) NewTxn() int64 {
	return atomic.AddInt64(&c.txnSeq, 1)
}

// QueryPlan handles the "query" verb for an already-built logical plan:
// it allocates a txn, starts rewriting, optimizing, distributing across
// c.Workers and running every stage in the background, and returns the
// txn at once; Check reports when that run is done (spec.md §5.2).
//
// Parsing SQL text into a plan.Node tree is out of scope here (spec.md's
// Non-goals exclude a SQL front end).
func (c *Coordinator) QueryPlan(ctx context.Context, logical plan.Node) (rpcapi.QueryResponse, error) {
	txn := c.NewTxn()
	c.mu.Lock()
	c.state[txn] = &txnState{}
	c.mu.Unlock()

	go c.run(ctx, txn, logical)
	return rpcapi.QueryResponse{Txn: txn}, nil
}

func (c *Coordinator) run(ctx context.Context, txn int64, logical plan.Node) {
	st := &txnState{}
	defer func() {
		c.mu.Lock()
		c.state[txn] = st
		c.mu.Unlock()
	}()

	rewritten, err := rewrite.Apply(logical)
	if err != nil {
		st.done, st.err = true, err
		return
	}
	cat, err := c.buildCatalog(ctx, txn, rewritten)
	if err != nil {
		st.done, st.err = true, err
		return
	}
	optimized, err := memo.Optimize(rewritten, cat)
	if err != nil {
		st.done, st.err = true, err
		return
	}
	distPlan := distribute.Distribute(optimized, txn, len(c.Workers))

	g, gctx := errgroup.WithContext(ctx)
	results := make([][]*kernel.RecordBatch, len(distPlan.Stages))
	for i, stage := range distPlan.Stages {
		i, stage := i, stage
		g.Go(func() error {
			batches, err := c.runStage(gctx, txn, stage)
			if err != nil {
				return err
			}
			results[i] = batches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		st.done, st.err = true, err
		return
	}
	for _, r := range results {
		st.rows = append(st.rows, r...)
	}
	st.done = true
}

// runStage fans stage out to every worker it was assigned, matching
// spec.md §5.3's "all assigned workers run the stage concurrently".
func (c *Coordinator) runStage(ctx context.Context, txn int64, stage *distribute.Stage) ([]*kernel.RecordBatch, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var out []*kernel.RecordBatch
	for _, workerID := range stage.Workers {
		workerID := workerID
		if workerID < 0 || workerID >= len(c.Workers) {
			continue
		}
		g.Go(func() error {
			resp, err := c.Workers[workerID].Submit(gctx, rpcapi.SubmitRequest{Txn: txn, StageID: stage.ID})
			if err != nil {
				return err
			}
			batches := make([]*kernel.RecordBatch, len(resp.Batches))
			for i, payload := range resp.Batches {
				batch, err := rpcapi.DecodeBatch(payload)
				if err != nil {
					return err
				}
				batches[i] = batch
			}
			mu.Lock()
			defer mu.Unlock()
			out = append(out, batches...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Check implements the "check" verb (spec.md §5.2).
func (c *Coordinator) Check(req rpcapi.CheckRequest) rpcapi.CheckResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.state[req.Txn]
	if !ok {
		return rpcapi.CheckResponse{Done: true, Error: "unknown txn"}
	}
	resp := rpcapi.CheckResponse{Done: st.done}
	if st.err != nil {
		resp.Error = st.err.Error()
	}
	return resp
}

// memoCatalog is memo.Optimize's view of the schema: c.Catalog's index
// definitions, and per-table statistics gathered from every worker and
// merged (spec.md §3 "mergeable across workers", spec.md §4.4's cost
// model). Built fresh per query by buildCatalog, since statistics are a
// point-in-time snapshot rather than something to cache indefinitely.
type memoCatalog struct {
	catalog *catalog.Catalog
	stats   map[string]*stats.TableStatistics
}

func (m *memoCatalog) TableStatistics(table string) *stats.TableStatistics {
	if st, ok := m.stats[table]; ok {
		return st
	}
	return stats.NewTableStatistics()
}

func (m *memoCatalog) Indexes(table string) []storage.IndexDef {
	defs := m.catalog.IndexesForTable(table)
	out := make([]storage.IndexDef, len(defs))
	for i, d := range defs {
		out[i] = storage.IndexDef{Name: d.Name, ColumnID: d.ColumnID}
	}
	return out
}

// buildCatalog finds every table n's TableScan/IndexScan nodes reference,
// fans a Stats request for each out to every worker concurrently, and
// merges the per-worker TableStatistics into one memo.Catalog (spec.md
// §4.4's index match and join strategy decisions need this before
// memo.Optimize runs).
func (c *Coordinator) buildCatalog(ctx context.Context, txn int64, n plan.Node) (*memoCatalog, error) {
	tables := map[string]bool{}
	plan.Inspect(n, func(node plan.Node) bool {
		switch v := node.(type) {
		case *plan.TableScan:
			tables[v.Table] = true
		case *plan.IndexScan:
			tables[v.Table] = true
		}
		return true
	})

	var mu sync.Mutex
	merged := make(map[string]*stats.TableStatistics, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	for table := range tables {
		table := table
		for _, w := range c.Workers {
			w := w
			g.Go(func() error {
				resp, err := w.Stats(gctx, rpcapi.StatsRequest{Table: table, Txn: txn})
				if err != nil {
					return err
				}
				local := statsFromResponse(resp)
				mu.Lock()
				defer mu.Unlock()
				if existing, ok := merged[table]; ok {
					merged[table] = existing.Merge(local)
				} else {
					merged[table] = local
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &memoCatalog{catalog: c.Catalog, stats: merged}, nil
}

func statsFromResponse(resp rpcapi.StatsResponse) *stats.TableStatistics {
	out := stats.NewTableStatistics()
	out.RowCount = resp.RowCount
	for _, col := range resp.Columns {
		out.Columns[col.ColumnID] = &stats.ColumnStatistics{
			Sketch:    stats.NewHLLFromRegisters(col.Registers),
			Histogram: stats.NewHistogramFromParts(col.HistogramBoundaries, col.HistogramRows),
		}
	}
	return out
}
