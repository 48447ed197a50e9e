package storage

import (
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/stats"
)

// statsHistogramBuckets bounds the per-column histogram built by
// ComputeStatistics; spec.md §4.4 doesn't pin an exact bucket count, so we
// use a small constant appropriate for planning-grade estimates rather
// than exact analytics.
const statsHistogramBuckets = 16

// ComputeStatistics scans every page of t's heap visible at txn and builds
// a TableStatistics: a row count plus, per column, an HLL++ sketch and a
// histogram over that column's byte-key encodings (spec.md §3, §4.4). This
// is the per-worker half of cross-worker statistics merging — the
// coordinator combines one TableStatistics per worker with
// stats.TableStatistics.Merge.
func ComputeStatistics(t *Table, txn int64) *stats.TableStatistics {
	out := stats.NewTableStatistics()
	keys := make(map[int64][][]byte, len(t.Heap.Schema))

	for pid := 0; pid < t.Heap.NumPages(); pid++ {
		batch, ok := t.Heap.Scan(pid, txn)
		if !ok {
			continue
		}
		out.RowCount += int64(batch.Len())
		for _, col := range t.Heap.Schema {
			arr, ok := batch.Column(col.Name)
			if !ok {
				continue
			}
			keys[col.ID] = append(keys[col.ID], columnKeys(arr)...)
		}
	}

	for _, col := range t.Heap.Schema {
		sketch := stats.NewHLL()
		for _, k := range keys[col.ID] {
			sketch.Insert(k)
		}
		out.Columns[col.ID] = &stats.ColumnStatistics{
			Sketch:    sketch,
			Histogram: stats.BuildHistogram(keys[col.ID], statsHistogramBuckets),
		}
	}
	return out
}

// columnKeys byte-key-encodes every non-null value of arr, in row order,
// the same encoding IndexDef.Tree uses (kernel/bytekey.go), so a column's
// ART keys and its statistics sketch/histogram agree on value identity.
func columnKeys(arr kernel.Array) [][]byte {
	out := make([][]byte, 0, arr.Len())
	switch a := arr.(type) {
	case *kernel.I64Array:
		for i := 0; i < a.Len(); i++ {
			if v, ok := a.Get(i); ok {
				out = append(out, kernel.EncodeI64(v))
			}
		}
	case *kernel.F64Array:
		for i := 0; i < a.Len(); i++ {
			if v, ok := a.Get(i); ok {
				out = append(out, kernel.EncodeF64(v))
			}
		}
	case *kernel.BoolArray:
		for i := 0; i < a.Len(); i++ {
			if v, ok := a.Get(i); ok {
				out = append(out, kernel.EncodeBool(v))
			}
		}
	case *kernel.StringArray:
		for i := 0; i < a.Len(); i++ {
			if v, ok := a.Get(i); ok {
				out = append(out, kernel.EncodeString(v))
			}
		}
	case *kernel.DateArray:
		for i := 0; i < a.Len(); i++ {
			if v, ok := a.Get(i); ok {
				out = append(out, kernel.EncodeI32(v))
			}
		}
	case *kernel.TimestampArray:
		for i := 0; i < a.Len(); i++ {
			if v, ok := a.Get(i); ok {
				out = append(out, kernel.EncodeI64(v))
			}
		}
	}
	return out
}
