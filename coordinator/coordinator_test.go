package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/zeeql/catalog"
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/planner/distribute"
	"github.com/dolthub/zeeql/rpcapi"
	"github.com/dolthub/zeeql/stats"
)

func TestNewTxnIsMonotonicallyIncreasing(t *testing.T) {
	c := New(catalog.New(), nil, nil)
	a := c.NewTxn()
	b := c.NewTxn()
	require.Greater(t, b, a)
}

func TestCheckUnknownTxnReportsDone(t *testing.T) {
	c := New(catalog.New(), nil, nil)
	resp := c.Check(rpcapi.CheckRequest{Txn: 999})
	require.True(t, resp.Done)
	require.NotEmpty(t, resp.Error)
}

// fakeWorker is an in-memory WorkerClient stand-in, so coordinator logic
// can be tested without a real worker process or transport.
type fakeWorker struct {
	statsResp  rpcapi.StatsResponse
	submitResp rpcapi.SubmitResponse
}

func (f *fakeWorker) Submit(ctx context.Context, req rpcapi.SubmitRequest) (rpcapi.SubmitResponse, error) {
	return f.submitResp, nil
}

func (f *fakeWorker) Stats(ctx context.Context, req rpcapi.StatsRequest) (rpcapi.StatsResponse, error) {
	return f.statsResp, nil
}

func TestBuildCatalogMergesStatisticsAcrossWorkers(t *testing.T) {
	w1 := &fakeWorker{statsResp: rpcapi.StatsResponse{RowCount: 3}}
	w2 := &fakeWorker{statsResp: rpcapi.StatsResponse{RowCount: 5}}
	c := New(catalog.New(), []WorkerClient{w1, w2}, nil)

	n := &plan.TableScan{Table: "people"}
	cat, err := c.buildCatalog(context.Background(), 1, n)
	require.NoError(t, err)
	require.Equal(t, int64(8), cat.TableStatistics("people").RowCount)
	require.Equal(t, int64(0), cat.TableStatistics("nosuchtable").RowCount)
}

func TestMemoCatalogIndexesConvertsFromCatalog(t *testing.T) {
	cat := catalog.New()
	_, err := cat.CreateTable("t", []string{"a"}, []kernel.DataType{kernel.Int64})
	require.NoError(t, err)
	_, err = cat.CreateIndex("t_a_idx", "t", "a")
	require.NoError(t, err)

	c := New(cat, nil, nil)
	mc := &memoCatalog{catalog: c.Catalog, stats: map[string]*stats.TableStatistics{}}
	idxs := mc.Indexes("t")
	require.Len(t, idxs, 1)
	require.Equal(t, "t_a_idx", idxs[0].Name)
}

func TestRunStageDecodesAndAppendsRealBatches(t *testing.T) {
	names := []string{"x"}
	batch := kernel.NewRecordBatch(names, []kernel.Array{kernel.NewI64Array([]int64{1, 2, 3}, kernel.Trues(3))})
	payload := rpcapi.EncodeBatch(batch)

	w := &fakeWorker{submitResp: rpcapi.SubmitResponse{Batches: []rpcapi.BatchPayload{payload}}}
	c := New(catalog.New(), []WorkerClient{w}, nil)

	out, err := c.runStage(context.Background(), 1, &distribute.Stage{ID: 0, Workers: []int{0}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 3, out[0].Len())
	col, ok := out[0].Column("x")
	require.True(t, ok)
	v, ok := col.(*kernel.I64Array).Get(1)
	require.True(t, ok)
	require.Equal(t, int64(2), v)
}
