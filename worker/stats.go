package worker

import (
	"context"

	"github.com/dolthub/zeeql/rpcapi"
	"github.com/dolthub/zeeql/storage"
)

// Stats reports this worker's local TableStatistics for req.Table, visible
// at req.Txn (spec.md §5.3's worker verbs, extended by SPEC_FULL.md's
// cross-worker statistics merge: the coordinator's memo.Catalog adapter
// fans this call out to every worker and merges the results).
func (w *Worker) Stats(ctx context.Context, req rpcapi.StatsRequest) (rpcapi.StatsResponse, error) {
	t, err := w.Root.Table(req.Table)
	if err != nil {
		return rpcapi.StatsResponse{}, err
	}
	local := storage.ComputeStatistics(t, req.Txn)

	resp := rpcapi.StatsResponse{RowCount: local.RowCount}
	for id, c := range local.Columns {
		resp.Columns = append(resp.Columns, rpcapi.ColumnStats{
			ColumnID:            id,
			Registers:           c.Sketch.Registers(),
			HistogramBoundaries: c.Histogram.Boundaries(),
			HistogramRows:       c.Histogram.Rows(),
		})
	}
	return resp, nil
}
