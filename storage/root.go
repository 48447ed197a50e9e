package storage

import (
	"sync"

	"github.com/dolthub/zeeql/kernel"
)

// IndexDef names a secondary index: the column it's built over and the
// ART that holds it.
type IndexDef struct {
	Name     string
	ColumnID int64
	Tree     *ART
}

// Table bundles a heap with its secondary indexes (spec.md §3).
type Table struct {
	Name    string
	Heap    *Heap
	Indexes map[string]*IndexDef
}

// Root is the per-worker storage registry: every table it holds a heap
// for, keyed by name (spec.md §3 "storage root"), plus the bootstrap
// metadata tables (zeedb:catalog bootstrap pattern, supplemented from
// original_source since spec.md's distillation left the bootstrap
// mechanism implicit).
type Root struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewRoot() *Root {
	r := &Root{tables: make(map[string]*Table)}
	r.bootstrap()
	return r
}

// CreateTable registers a new, empty table; ErrAlreadyExists if name is
// taken.
func (r *Root) CreateTable(name string, schema []kernel.Column) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[name]; ok {
		return nil, ErrAlreadyExists.New(name)
	}
	t := &Table{Name: name, Heap: NewHeap(schema), Indexes: make(map[string]*IndexDef)}
	r.tables[name] = t
	return t, nil
}

func (r *Root) Table(name string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	if !ok {
		return nil, ErrNotFound.New(name)
	}
	return t, nil
}

func (r *Root) DropTable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[name]; !ok {
		return ErrNotFound.New(name)
	}
	delete(r.tables, name)
	return nil
}

// CreateIndex builds a fresh ART over an existing table's column by
// scanning every page currently in its heap (spec.md §4.2).
func (r *Root) CreateIndex(table, index string, columnID int64, keyFn func(*kernel.RecordBatch) [][]byte) error {
	t, err := r.Table(table)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := t.Indexes[index]; ok {
		return ErrAlreadyExists.New(index)
	}
	tree := NewART()
	for pid := 0; pid < t.Heap.NumPages(); pid++ {
		batch, ok := t.Heap.Scan(pid, MaxTxn)
		if !ok {
			continue
		}
		for i, key := range keyFn(batch) {
			tree.Insert(key, TID(pid, i))
		}
	}
	t.Indexes[index] = &IndexDef{Name: index, ColumnID: columnID, Tree: tree}
	return nil
}

// bootstrap registers the metadata.{catalog,table,column,index} tables
// every storage root starts with, matching the catalog's own bootstrap
// rows (zeedb catalog bootstrap pattern: metadata about the schema lives
// in ordinary heaps, not a separate format).
func (r *Root) bootstrap() {
	r.tables["metadata.catalog"] = &Table{
		Name: "metadata.catalog",
		Heap: NewHeap([]kernel.Column{
			{ID: 1, Name: "catalog_id", Table: "metadata.catalog", Type: kernel.Int64},
			{ID: 2, Name: "catalog_name", Table: "metadata.catalog", Type: kernel.String},
		}),
		Indexes: make(map[string]*IndexDef),
	}
	r.tables["metadata.table"] = &Table{
		Name: "metadata.table",
		Heap: NewHeap([]kernel.Column{
			{ID: 3, Name: "table_id", Table: "metadata.table", Type: kernel.Int64},
			{ID: 4, Name: "catalog_id", Table: "metadata.table", Type: kernel.Int64},
			{ID: 5, Name: "table_name", Table: "metadata.table", Type: kernel.String},
		}),
		Indexes: make(map[string]*IndexDef),
	}
	r.tables["metadata.column"] = &Table{
		Name: "metadata.column",
		Heap: NewHeap([]kernel.Column{
			{ID: 6, Name: "column_id", Table: "metadata.column", Type: kernel.Int64},
			{ID: 7, Name: "table_id", Table: "metadata.column", Type: kernel.Int64},
			{ID: 8, Name: "column_name", Table: "metadata.column", Type: kernel.String},
			{ID: 9, Name: "column_type", Table: "metadata.column", Type: kernel.Int64},
		}),
		Indexes: make(map[string]*IndexDef),
	}
	r.tables["metadata.index"] = &Table{
		Name: "metadata.index",
		Heap: NewHeap([]kernel.Column{
			{ID: 10, Name: "index_id", Table: "metadata.index", Type: kernel.Int64},
			{ID: 11, Name: "table_id", Table: "metadata.index", Type: kernel.Int64},
			{ID: 12, Name: "index_name", Table: "metadata.index", Type: kernel.String},
			{ID: 13, Name: "column_id", Table: "metadata.index", Type: kernel.Int64},
		}),
		Indexes: make(map[string]*IndexDef),
	}
}
