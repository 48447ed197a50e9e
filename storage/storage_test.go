package storage

import (
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/stretchr/testify/require"
)

func schemaAB() []kernel.Column {
	return []kernel.Column{
		{ID: 1, Name: "a", Table: "t", Type: kernel.Int64},
		{ID: 2, Name: "b", Table: "t", Type: kernel.String},
	}
}

func batchAB(a []int64, b []string) *kernel.RecordBatch {
	avalid := kernel.Trues(len(a))
	bvalid := kernel.Trues(len(b))
	return kernel.NewRecordBatch([]string{"a", "b"}, []kernel.Array{
		kernel.NewI64Array(a, avalid),
		kernel.NewStringArray(b, bvalid),
	})
}

func TestHeapInsertAssignsIncreasingTIDs(t *testing.T) {
	h := NewHeap(schemaAB())
	batch := batchAB([]int64{1, 2, 3}, []string{"x", "y", "z"})
	tids := h.Insert(batch, 10)
	require.Equal(t, 3, tids.Len())
	prev := int64(-1)
	for i := 0; i < tids.Len(); i++ {
		v, ok := tids.Get(i)
		require.True(t, ok)
		require.Greater(t, v, prev)
		prev = v
	}
}

func TestHeapSpillsAcrossPages(t *testing.T) {
	h := NewHeap(schemaAB())
	n := PageSize + 5
	a := make([]int64, n)
	b := make([]string, n)
	for i := range a {
		a[i] = int64(i)
		b[i] = "v"
	}
	h.Insert(batchAB(a, b), 1)
	require.Equal(t, 2, h.NumPages())
}

func TestHeapVisibilityRespectsTxnWindow(t *testing.T) {
	h := NewHeap(schemaAB())
	tids := h.Insert(batchAB([]int64{1}, []string{"x"}), 5)
	tid, _ := tids.Get(0)

	batchBefore, _ := h.Scan(PageOf(tid), 4)
	require.Equal(t, 0, batchBefore.Len())

	batchAt, _ := h.Scan(PageOf(tid), 5)
	require.Equal(t, 1, batchAt.Len())

	ok := h.Delete(tid, 6)
	require.True(t, ok)

	batchAfterDelete, _ := h.Scan(PageOf(tid), 7)
	require.Equal(t, 0, batchAfterDelete.Len())

	batchBeforeDelete, _ := h.Scan(PageOf(tid), 5)
	require.Equal(t, 1, batchBeforeDelete.Len())
}

func TestHeapDeleteIsCASOnce(t *testing.T) {
	h := NewHeap(schemaAB())
	tids := h.Insert(batchAB([]int64{1}, []string{"x"}), 1)
	tid, _ := tids.Get(0)
	require.True(t, h.Delete(tid, 2))
	require.False(t, h.Delete(tid, 3))
}

func TestHeapBitmapScanMatchesScan(t *testing.T) {
	h := NewHeap(schemaAB())
	n := PageSize + 3
	a := make([]int64, n)
	b := make([]string, n)
	for i := range a {
		a[i] = int64(i)
		b[i] = "v"
	}
	tids := h.Insert(batchAB(a, b), 1)
	all := make([]int64, tids.Len())
	for i := range all {
		all[i], _ = tids.Get(i)
	}
	got := h.BitmapScan(all, MaxTxn)
	require.Equal(t, n, got.Len())
}

func TestARTLookupAndRange(t *testing.T) {
	tree := NewART()
	tree.Insert(kernel.EncodeI64(10), 100)
	tree.Insert(kernel.EncodeI64(20), 200)
	tree.Insert(kernel.EncodeI64(30), 300)

	require.Equal(t, []int64{100}, tree.Lookup(kernel.EncodeI64(10)))
	require.Nil(t, tree.Lookup(kernel.EncodeI64(99)))

	got := tree.Range(kernel.EncodeI64(10), kernel.EncodeI64(20))
	require.Equal(t, []int64{100, 200}, got)

	gotAll := tree.Range(nil, nil)
	require.Equal(t, []int64{100, 200, 300}, gotAll)
}

func TestARTDuplicateKeysAccumulateTIDs(t *testing.T) {
	tree := NewART()
	tree.Insert(kernel.EncodeI64(1), 1)
	tree.Insert(kernel.EncodeI64(1), 2)
	require.ElementsMatch(t, []int64{1, 2}, tree.Lookup(kernel.EncodeI64(1)))
}

func TestARTRemoveDropsOnlyTheGivenTID(t *testing.T) {
	tree := NewART()
	tree.Insert(kernel.EncodeI64(1), 100)
	tree.Insert(kernel.EncodeI64(1), 200)

	tree.Remove(kernel.EncodeI64(1), 100)
	require.Equal(t, []int64{200}, tree.Lookup(kernel.EncodeI64(1)))

	tree.Remove(kernel.EncodeI64(1), 200)
	require.Empty(t, tree.Lookup(kernel.EncodeI64(1)))
}

func TestARTRemoveUnknownKeyIsANoop(t *testing.T) {
	tree := NewART()
	tree.Insert(kernel.EncodeI64(1), 100)
	tree.Remove(kernel.EncodeI64(99), 100)
	require.Equal(t, []int64{100}, tree.Lookup(kernel.EncodeI64(1)))
}

func TestRootBootstrapRegistersMetadataTables(t *testing.T) {
	r := NewRoot()
	for _, name := range []string{"metadata.catalog", "metadata.table", "metadata.column", "metadata.index"} {
		_, err := r.Table(name)
		require.NoError(t, err)
	}
}

func TestRootCreateTableRejectsDuplicate(t *testing.T) {
	r := NewRoot()
	_, err := r.CreateTable("t", schemaAB())
	require.NoError(t, err)
	_, err = r.CreateTable("t", schemaAB())
	require.Error(t, err)
}

func TestRootDropTableThenNotFound(t *testing.T) {
	r := NewRoot()
	_, err := r.CreateTable("t", schemaAB())
	require.NoError(t, err)
	require.NoError(t, r.DropTable("t"))
	_, err = r.Table("t")
	require.Error(t, err)
}
