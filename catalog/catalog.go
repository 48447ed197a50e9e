// Package catalog is the coordinator-side schema registry: table/column/
// index definitions and the sequence allocators that hand out their ids
// (spec.md §3, §7), grounded on zeedb:catalog's bootstrap-tables-hold-
// their-own-metadata pattern, supplemented from original_source since
// spec.md's distillation left the bootstrap mechanism implicit.
package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/dolthub/zeeql/kernel"
)

// seedStart is where every sequence begins counting, leaving ids below
// it reserved for the four bootstrap metadata tables/columns themselves
// (spec.md §3; zeedb reserves low ids the same way).
const seedStart = 100

// Sequence is a monotonically increasing id allocator.
type Sequence struct {
	next int64
}

func NewSequence() *Sequence {
	return &Sequence{next: seedStart}
}

func (s *Sequence) Next() int64 {
	return atomic.AddInt64(&s.next, 1) - 1
}

// TableDef is a catalog-resident table definition.
type TableDef struct {
	ID      int64
	Name    string
	Columns []kernel.Column
}

// IndexDef is a catalog-resident secondary index definition.
type IndexDef struct {
	ID       int64
	Name     string
	Table    string
	ColumnID int64
}

// Catalog is the coordinator's full schema registry: every table and
// index definition, plus the sequences that allocate new table/column/
// index ids (spec.md §3, §7 DDL procedures).
type Catalog struct {
	mu       sync.RWMutex
	tables   map[string]*TableDef
	indexes  map[string]*IndexDef
	TableIDs *Sequence
	ColumnIDs *Sequence
	IndexIDs *Sequence
}

func New() *Catalog {
	return &Catalog{
		tables:    make(map[string]*TableDef),
		indexes:   make(map[string]*IndexDef),
		TableIDs:  NewSequence(),
		ColumnIDs: NewSequence(),
		IndexIDs:  NewSequence(),
	}
}

// CreateTable registers name with the given column definitions (each
// assigned a fresh process-wide kernel.Column id), returning the new
// TableDef (spec.md §2 DDL, §3 column identity).
func (c *Catalog) CreateTable(name string, columnNames []string, types []kernel.DataType) (*TableDef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[name]; ok {
		return nil, ErrTableExists.New(name)
	}
	cols := make([]kernel.Column, len(columnNames))
	for i := range columnNames {
		cols[i] = kernel.Column{ID: kernel.NextColumnID(), Name: columnNames[i], Table: name, Type: types[i]}
	}
	def := &TableDef{ID: c.TableIDs.Next(), Name: name, Columns: cols}
	c.tables[name] = def
	return def, nil
}

func (c *Catalog) Table(name string) (*TableDef, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, ErrNoSuchTable.New(name)
	}
	return t, nil
}

func (c *Catalog) DropTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[name]; !ok {
		return ErrNoSuchTable.New(name)
	}
	delete(c.tables, name)
	for k, idx := range c.indexes {
		if idx.Table == name {
			delete(c.indexes, k)
		}
	}
	return nil
}

// CreateIndex registers a secondary index over table.column.
func (c *Catalog) CreateIndex(name, table, column string) (*IndexDef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[table]
	if !ok {
		return nil, ErrNoSuchTable.New(table)
	}
	var colID int64 = -1
	for _, col := range t.Columns {
		if col.Name == column {
			colID = col.ID
		}
	}
	if colID == -1 {
		return nil, ErrNoSuchColumn.New(column)
	}
	key := table + "." + name
	if _, ok := c.indexes[key]; ok {
		return nil, ErrIndexExists.New(name)
	}
	def := &IndexDef{ID: c.IndexIDs.Next(), Name: name, Table: table, ColumnID: colID}
	c.indexes[key] = def
	return def, nil
}

func (c *Catalog) IndexesForTable(table string) []*IndexDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*IndexDef
	for _, idx := range c.indexes {
		if idx.Table == table {
			out = append(out, idx)
		}
	}
	return out
}
