package exec

import (
	"io"
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/stretchr/testify/require"
)

func valuesOp(a []int64) *Values {
	return &Values{Batch: kernel.NewRecordBatch([]string{"a"}, []kernel.Array{kernel.NewI64Array(a, kernel.Trues(len(a)))})}
}

func drain(t *testing.T, op Operator) []*kernel.RecordBatch {
	var out []*kernel.RecordBatch
	for {
		b, err := op.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, b)
	}
}

func TestFilterKeepsOnlyMatchingRows(t *testing.T) {
	col := kernel.Column{ID: 1, Name: "a", Type: kernel.Int64}
	f := &Filter{
		Input:     valuesOp([]int64{1, 2, 3, 4}),
		Predicate: &plan.BinaryOp{Op: ">", Left: &plan.ColumnRef{Column: col}, Right: &plan.Literal{Value: int64(2), Typ: kernel.Int64}},
	}
	batches := drain(t, f)
	require.Len(t, batches, 1)
	require.Equal(t, 2, batches[0].Len())
}

func TestLimitTruncatesFinalBatch(t *testing.T) {
	l := &Limit{Input: valuesOp([]int64{1, 2, 3, 4, 5}), Count: 3}
	batches := drain(t, l)
	require.Len(t, batches, 1)
	require.Equal(t, 3, batches[0].Len())
}

func TestMapComputesProjection(t *testing.T) {
	col := kernel.Column{ID: 1, Name: "a", Type: kernel.Int64}
	m := &Map{
		Input:       valuesOp([]int64{1, 2, 3}),
		Projections: []plan.Scalar{&plan.BinaryOp{Op: "+", Left: &plan.ColumnRef{Column: col}, Right: &plan.Literal{Value: int64(10), Typ: kernel.Int64}}},
		Names:       []string{"a_plus_10"},
	}
	batches := drain(t, m)
	require.Len(t, batches, 1)
	v, ok := batches[0].Columns[0].(*kernel.I64Array).Get(0)
	require.True(t, ok)
	require.Equal(t, int64(11), v)
}

func TestAggregateGroupsAndSums(t *testing.T) {
	batch := kernel.NewRecordBatch([]string{"g", "v"}, []kernel.Array{
		kernel.NewI64Array([]int64{1, 1, 2}, kernel.Trues(3)),
		kernel.NewI64Array([]int64{10, 20, 30}, kernel.Trues(3)),
	})
	col := kernel.Column{ID: 2, Name: "v", Type: kernel.Int64}
	agg := &Aggregate{
		Input:       &Values{Batch: batch},
		GroupByCols: []string{"g"},
		Funcs:       []plan.AggFunc{{Func: "SUM", Arg: &plan.ColumnRef{Column: col}}},
		OutputNames: []string{"g", "sum_v"},
	}
	batches := drain(t, agg)
	require.Len(t, batches, 1)
	require.Equal(t, 2, batches[0].Len())
}

func TestSortOrdersAscending(t *testing.T) {
	col := kernel.Column{ID: 1, Name: "a", Type: kernel.Int64}
	s := &Sort{
		Input:      valuesOp([]int64{3, 1, 2}),
		Keys:       []plan.Scalar{&plan.ColumnRef{Column: col}},
		Descending: []bool{false},
		NullsFirst: []bool{true},
	}
	batches := drain(t, s)
	require.Len(t, batches, 1)
	arr := batches[0].Columns[0].(*kernel.I64Array)
	var got []int64
	for i := 0; i < arr.Len(); i++ {
		v, _ := arr.Get(i)
		got = append(got, v)
	}
	require.Equal(t, []int64{1, 2, 3}, got)
}

func TestUnionConcatenatesInputs(t *testing.T) {
	u := &Union{Inputs: []Operator{valuesOp([]int64{1}), valuesOp([]int64{2})}}
	batches := drain(t, u)
	total := 0
	for _, b := range batches {
		total += b.Len()
	}
	require.Equal(t, 2, total)
}
