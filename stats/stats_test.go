package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHLLCountsApproximately(t *testing.T) {
	h := NewHLL()
	for i := 0; i < 10000; i++ {
		h.Insert([]byte(fmt.Sprintf("value-%d", i)))
	}
	got := h.Count()
	require.InEpsilonf(t, 10000, got, 0.5, "HLL estimate %v should be within 50%% of 10000 (coarse 16-register sketch)", got)
}

func TestHLLMergeIsUnionOfRegisters(t *testing.T) {
	a, b := NewHLL(), NewHLL()
	for i := 0; i < 100; i++ {
		a.Insert([]byte(fmt.Sprintf("a-%d", i)))
	}
	for i := 0; i < 100; i++ {
		b.Insert([]byte(fmt.Sprintf("b-%d", i)))
	}
	merged := NewHLL()
	merged.Merge(a)
	merged.Merge(b)
	require.GreaterOrEqual(t, merged.Count(), a.Count())
	require.GreaterOrEqual(t, merged.Count(), b.Count())
}

func TestHistogramSelectivityMonotonic(t *testing.T) {
	keys := make([][]byte, 1000)
	for i := range keys {
		keys[i] = []byte{byte(i / 256), byte(i % 256)}
	}
	h := BuildHistogram(keys, 10)
	full := h.Selectivity(nil, nil)
	half := h.Selectivity(nil, keys[500])
	require.LessOrEqual(t, half, full)
}

func TestTableStatisticsMerge(t *testing.T) {
	a := NewTableStatistics()
	a.RowCount = 10
	a.Columns[1] = &ColumnStatistics{Sketch: NewHLL()}
	b := NewTableStatistics()
	b.RowCount = 20
	b.Columns[1] = &ColumnStatistics{Sketch: NewHLL()}

	merged := a.Merge(b)
	require.Equal(t, int64(30), merged.RowCount)
	require.Contains(t, merged.Columns, int64(1))
}
