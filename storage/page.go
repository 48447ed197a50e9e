package storage

import (
	"math"
	"sync/atomic"

	"github.com/dolthub/zeeql/kernel"
)

// PageSize is the fixed row capacity of a PAX page (spec.md §6: "typical
// value ~1024 rows"). bitmap_scan's page bucketing formula, pid =
// tid/PageSize, is the only place this constant is observable from
// outside the package.
const PageSize = 1024

// Page is a fixed-capacity PAX block: one column store per schema column,
// plus the hidden $xmin/$xmax visibility columns and an atomic row count
// (spec.md §3, §6).
type Page struct {
	PID      int
	Schema   []kernel.Column
	columns  []kernel.Array // growable builders, one per Schema entry
	xmin     []int64
	xmax     []int64
	rowCount int64 // atomic
}

// NewPage allocates an empty page for pid with the given schema.
func NewPage(pid int, schema []kernel.Column) *Page {
	cols := make([]kernel.Array, len(schema))
	for i, c := range schema {
		cols[i] = kernel.NewBuilder(c.Type, PageSize)
	}
	return &Page{
		PID:    pid,
		Schema: schema,
		columns: cols,
		xmin:    make([]int64, 0, PageSize),
		xmax:    make([]int64, 0, PageSize),
	}
}

func (p *Page) RowCount() int {
	return int(atomic.LoadInt64(&p.rowCount))
}

// Insert appends as many rows of records (starting at offset) as fit in
// the page's remaining capacity, assigning each a tid and recording
// xmin=txn, xmax=MaxInt64. It returns the new offset into records (equal
// to records.Len() if everything fit) and appends the assigned tids.
func (p *Page) Insert(records *kernel.RecordBatch, txn int64, offset int, tids *kernel.I64Array) int {
	remaining := PageSize - p.RowCount()
	n := records.Len() - offset
	if n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		rowIdx := offset + i
		for ci, col := range p.columns {
			kernel.AppendFrom(col, records.Columns[ci], rowIdx)
		}
		rid := p.RowCount()
		p.xmin = append(p.xmin, txn)
		p.xmax = append(p.xmax, liveXmax) // sentinel "never deleted"
		atomic.AddInt64(&p.rowCount, 1)
		tids.AppendValue(TID(p.PID, rid), true)
	}
	return offset + n
}

// liveXmax is the xmax sentinel meaning "never deleted" (spec.md §3:
// "xmax ... initialized to i64::MAX").
const liveXmax int64 = math.MaxInt64

// MaxTxn is the largest transaction id a reader uses to see every row not
// yet deleted: it is below liveXmax, so xmin <= MaxTxn < xmax holds for
// every live row.
const MaxTxn int64 = int64(1) << 62

// TID packs a page id and row id into a single tuple id: pid*PageSize+rid
// (spec.md §6, Glossary).
func TID(pid, rid int) int64 {
	return int64(pid)*PageSize + int64(rid)
}

// PageOf returns the page id a tid belongs to.
func PageOf(tid int64) int {
	return int(tid / PageSize)
}

// RowOf returns the in-page row id of a tid.
func RowOf(tid int64) int {
	return int(tid % PageSize)
}

// Delete performs the visibility CAS from spec.md §4.3: if xmax(rid) is
// still liveXmax, store txn and return true; otherwise another transaction
// already deleted the row and this call loses the race, returning false.
//
// This uses atomic.CompareAndSwapInt64 directly on the xmax slot rather
// than a plain check-then-set, so Delete is race-free on its own — it
// doesn't depend on every caller routing through Heap.Delete's mutex (the
// page otherwise permits no concurrent structural mutation, since rows are
// only ever appended, never removed in place).
func (p *Page) Delete(rid int, txn int64) bool {
	return atomic.CompareAndSwapInt64(&p.xmax[rid], liveXmax, txn)
}

// Visible reports whether row rid is visible to a reader at txn t:
// xmin <= t < xmax (spec.md §3, §8).
func (p *Page) Visible(rid int, t int64) bool {
	return p.xmin[rid] <= t && t < p.xmax[rid]
}

// VisibilityMask returns a BoolArray the length of the page's current row
// count, true where Visible(rid, t) holds; Scan applies this as an
// implicit filter (spec.md §4.3).
func (p *Page) VisibilityMask(t int64) *kernel.BoolArray {
	n := p.RowCount()
	data := make([]bool, n)
	for i := 0; i < n; i++ {
		data[i] = p.Visible(i, t)
	}
	return kernel.NewBoolArray(data, kernel.Trues(n))
}

// Batch materializes the page's current rows (including the hidden
// $xmin/$xmax columns) as a RecordBatch, for the scan operators to filter
// by visibility and project from.
func (p *Page) Batch() *kernel.RecordBatch {
	names := make([]string, 0, len(p.Schema)+2)
	cols := make([]kernel.Array, 0, len(p.Schema)+2)
	for i, c := range p.Schema {
		names = append(names, c.Name)
		cols = append(cols, p.columns[i])
	}
	n := p.RowCount()
	xminValid := kernel.Trues(n)
	xmaxValid := kernel.Trues(n)
	names = append(names, "$xmin", "$xmax")
	cols = append(cols, kernel.NewI64Array(append([]int64(nil), p.xmin...), xminValid),
		kernel.NewI64Array(append([]int64(nil), p.xmax...), xmaxValid))
	return kernel.NewRecordBatch(names, cols)
}
