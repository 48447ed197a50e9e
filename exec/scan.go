package exec

import (
	"io"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/storage"
)

// TableScan pulls one page at a time from heap, applying MVCC
// visibility at txn (spec.md §4.3).
type TableScan struct {
	Heap *storage.Heap
	Txn  int64
	pid  int
}

func NewTableScan(heap *storage.Heap, txn int64) *TableScan {
	return &TableScan{Heap: heap, Txn: txn}
}

func (s *TableScan) Next() (*kernel.RecordBatch, error) {
	for s.pid < s.Heap.NumPages() {
		batch, ok := s.Heap.Scan(s.pid, s.Txn)
		s.pid++
		if !ok {
			continue
		}
		if batch.Len() == 0 {
			continue
		}
		return batch, nil
	}
	return nil, io.EOF
}

func (s *TableScan) Close() error { return nil }

// IndexScan resolves tids via an ART lookup/range, then bitmap-scans the
// heap for those rows (spec.md §4.2).
type IndexScan struct {
	Heap  *storage.Heap
	Tree  *storage.ART
	Lo    []byte
	Hi    []byte
	Equal bool // true: Lo==Hi is an exact-match lookup, not a range
	Txn   int64
	done  bool
}

func (s *IndexScan) Next() (*kernel.RecordBatch, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	var tids []int64
	if s.Equal {
		tids = s.Tree.Lookup(s.Lo)
	} else {
		tids = s.Tree.Range(s.Lo, s.Hi)
	}
	if len(tids) == 0 {
		return nil, io.EOF
	}
	return s.Heap.BitmapScan(tids, s.Txn), nil
}

func (s *IndexScan) Close() error { return nil }

// Values replays a fixed batch once, the physical form of a logical
// Values node (e.g. INSERT ... VALUES).
type Values struct {
	Batch *kernel.RecordBatch
	done  bool
}

func (v *Values) Next() (*kernel.RecordBatch, error) {
	if v.done {
		return nil, io.EOF
	}
	v.done = true
	return v.Batch, nil
}

func (v *Values) Close() error { return nil }
