package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/zeeql/exchange"
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/querystate"
	"github.com/dolthub/zeeql/rpcapi"
	"github.com/dolthub/zeeql/storage"
)

func schemaAB() []kernel.Column {
	return []kernel.Column{
		{ID: 1, Name: "a", Table: "t", Type: kernel.Int64},
		{ID: 2, Name: "b", Table: "t", Type: kernel.Int64},
	}
}

func newWorkerWithTable(t *testing.T, rows []int64) (*Worker, *storage.Table) {
	root := storage.NewRoot()
	tbl, err := root.CreateTable("t", schemaAB())
	require.NoError(t, err)
	valid := kernel.Trues(len(rows))
	batch := kernel.NewRecordBatch([]string{"a", "b"}, []kernel.Array{
		kernel.NewI64Array(rows, valid),
		kernel.NewI64Array(rows, valid),
	})
	tbl.Heap.Insert(batch, 1)
	w := New(root, exchange.NewRegistry(), nil)
	return w, tbl
}

func TestCompileTableScanYieldsInsertedRows(t *testing.T) {
	w, _ := newWorkerWithTable(t, []int64{1, 2, 3})
	qs := querystate.New(context.Background(), 5, nil, nil)

	scan := &plan.TableScan{Table: "t", Schema_: schemaAB()}
	op, err := Compile(scan, w, qs)
	require.NoError(t, err)
	defer op.Close()

	batch, err := op.Next()
	require.NoError(t, err)
	require.Equal(t, 3, batch.Len())
}

func TestCompileUnsupportedNodeReportsError(t *testing.T) {
	w, _ := newWorkerWithTable(t, []int64{1})
	qs := querystate.New(context.Background(), 1, nil, nil)

	_, err := Compile(nil, w, qs)
	require.Error(t, err)
}

func TestCompileUnknownTableFails(t *testing.T) {
	w, _ := newWorkerWithTable(t, []int64{1})
	qs := querystate.New(context.Background(), 1, nil, nil)

	_, err := Compile(&plan.TableScan{Table: "missing", Schema_: schemaAB()}, w, qs)
	require.Error(t, err)
}

func TestSubmitDrainsCompiledPipeline(t *testing.T) {
	w, _ := newWorkerWithTable(t, []int64{1, 2})
	req := rpcapi.SubmitRequest{Txn: 1}
	resp, err := w.Submit(context.Background(), req, &plan.TableScan{Table: "t", Schema_: schemaAB()}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Batches, 1)
}

func TestSubstituteParamsReplacesParamRefInFilter(t *testing.T) {
	col := schemaAB()[0]
	filter := &plan.Filter{
		Predicate: &plan.BinaryOp{
			Op:         "=",
			Left:       &plan.ColumnRef{Column: col},
			Right:      &ParamRef{Index: 0, Typ: kernel.Int64},
			ResultType: kernel.Bool,
		},
	}
	filter.Input = &plan.TableScan{Table: "t", Schema_: schemaAB()}

	rewritten, err := SubstituteParams(filter, []rpcapi.Param{{Value: int64(7), Type: kernel.Int64}})
	require.NoError(t, err)

	f, ok := rewritten.(*plan.Filter)
	require.True(t, ok)
	bin, ok := f.Predicate.(*plan.BinaryOp)
	require.True(t, ok)
	lit, ok := bin.Right.(*plan.Literal)
	require.True(t, ok)
	require.Equal(t, int64(7), lit.Value)
}

func TestSubstituteParamsMissingIndexFails(t *testing.T) {
	filter := &plan.Filter{
		Predicate: &ParamRef{Index: 3, Typ: kernel.Int64},
	}
	filter.Input = &plan.TableScan{Table: "t", Schema_: schemaAB()}

	_, err := SubstituteParams(filter, nil)
	require.Error(t, err)
}

func TestSubstituteParamsLeavesPlanWithoutParamsUnchanged(t *testing.T) {
	scan := &plan.TableScan{Table: "t", Schema_: schemaAB()}
	rewritten, err := SubstituteParams(scan, nil)
	require.NoError(t, err)
	require.Equal(t, scan, rewritten)
}
