package storage

import (
	"sort"
	"sync"

	"github.com/dolthub/zeeql/kernel"
)

// Heap is an append-only list of pages for one table: the unit the
// coordinator addresses in a TableFreeScan and each worker scans
// independently (spec.md §3, §4.3), grounded on zeedb:storage/heap.rs's
// Heap::{insert,scan,bitmap_scan}.
type Heap struct {
	mu     sync.Mutex
	Schema []kernel.Column
	pages  []*Page
}

func NewHeap(schema []kernel.Column) *Heap {
	return &Heap{Schema: schema}
}

// Insert appends records to the last page, allocating new pages as each
// fills (spec.md §4.3). It returns the tids assigned, in input order.
func (h *Heap) Insert(records *kernel.RecordBatch, txn int64) *kernel.I64Array {
	h.mu.Lock()
	defer h.mu.Unlock()

	tids := kernel.NewI64Builder(records.Len())
	offset := 0
	for offset < records.Len() {
		if len(h.pages) == 0 || h.pages[len(h.pages)-1].RowCount() == PageSize {
			h.pages = append(h.pages, NewPage(len(h.pages), h.Schema))
		}
		last := h.pages[len(h.pages)-1]
		offset = last.Insert(records, txn, offset, tids)
	}
	return tids
}

// Delete marks tid deleted at txn, CAS-guarded per page (spec.md §4.3).
func (h *Heap) Delete(tid int64, txn int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	pid := PageOf(tid)
	if pid >= len(h.pages) {
		return false
	}
	return h.pages[pid].Delete(RowOf(tid), txn)
}

// NumPages reports the number of allocated pages, for workers to split a
// TableFreeScan across a deterministic page range (spec.md §5.3).
func (h *Heap) NumPages() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pages)
}

// Scan returns the visible rows of page pid as of txn t, or (nil, false)
// if pid is out of range.
func (h *Heap) Scan(pid int, t int64) (*kernel.RecordBatch, bool) {
	h.mu.Lock()
	page := h.pageAt(pid)
	h.mu.Unlock()
	if page == nil {
		return nil, false
	}
	batch := page.Batch()
	mask := page.VisibilityMask(t)
	return batch.Compress(mask), true
}

func (h *Heap) pageAt(pid int) *Page {
	if pid < 0 || pid >= len(h.pages) {
		return nil
	}
	return h.pages[pid]
}

// BitmapScan fetches exactly the rows named by sortedTIDs (already sorted
// ascending, as produced by an index lookup) visible at txn t, via the
// two-pointer merge over each page's row range described in
// zeedb:storage/heap.rs's bitmap_scan: walk the sorted tids once,
// advancing into successive pages rather than binary-searching per tid.
func (h *Heap) BitmapScan(sortedTIDs []int64, t int64) *kernel.RecordBatch {
	h.mu.Lock()
	pages := append([]*Page(nil), h.pages...)
	h.mu.Unlock()

	if !sort.SliceIsSorted(sortedTIDs, func(i, j int) bool { return sortedTIDs[i] < sortedTIDs[j] }) {
		panic("BitmapScan requires sorted tids")
	}

	var batches []*kernel.RecordBatch
	i := 0
	for pid := 0; pid < len(pages) && i < len(sortedTIDs); pid++ {
		page := pages[pid]
		lo := i
		for i < len(sortedTIDs) && PageOf(sortedTIDs[i]) == pid {
			i++
		}
		if i == lo {
			continue // no tids land in this page
		}
		rows := make([]int32, 0, i-lo)
		for _, tid := range sortedTIDs[lo:i] {
			rid := RowOf(tid)
			if rid < page.RowCount() && page.Visible(rid, t) {
				rows = append(rows, int32(rid))
			}
		}
		if len(rows) == 0 {
			continue
		}
		batches = append(batches, page.Batch().Gather(rows))
	}
	if len(batches) == 0 {
		return emptyBatch(h.Schema)
	}
	return kernel.Cat(batches)
}

func emptyBatch(schema []kernel.Column) *kernel.RecordBatch {
	names := make([]string, len(schema)+2)
	cols := make([]kernel.Array, len(schema)+2)
	for i, c := range schema {
		names[i] = c.Name
		cols[i] = kernel.NewBuilder(c.Type, 0)
	}
	names[len(schema)] = "$xmin"
	cols[len(schema)] = kernel.NewI64Array(nil, kernel.Trues(0))
	names[len(schema)+1] = "$xmax"
	cols[len(schema)+1] = kernel.NewI64Array(nil, kernel.Trues(0))
	return kernel.NewRecordBatch(names, cols)
}

// Truncate discards all pages, for DDL's "truncate table" (spec.md §2).
func (h *Heap) Truncate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pages = nil
}
