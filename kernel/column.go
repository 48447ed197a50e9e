package kernel

import "sync/atomic"

// columnSeq is the process-wide monotonic counter backing column identity.
// spec.md §3: "a process-wide, monotonically increasing 64-bit id."
var columnSeq uint64

// NextColumnID allocates a fresh, process-wide unique column id.
func NextColumnID() int64 {
	return int64(atomic.AddUint64(&columnSeq, 1))
}

// Column identifies a value in the data model. Two columns with the same
// ID are the same column regardless of Name or Table; Name/Table are
// presentation only and may legitimately differ across copies of the same
// Column value. Equality and hashing use only ID.
type Column struct {
	ID      int64
	Name    string
	Table   string
	Type    DataType
	// Late marks a column created after the original plan was built (e.g.
	// by a rewrite rule), so debug printing can distinguish it from
	// columns that came from the original resolved tree.
	Late bool
}

// Fresh returns a copy of c with a newly allocated ID, flagged Late. Name
// and Type are preserved.
func (c Column) Fresh() Column {
	return Column{ID: NextColumnID(), Name: c.Name, Table: c.Table, Type: c.Type, Late: true}
}

// Equal compares columns solely by ID, per spec.md §3.
func (c Column) Equal(other Column) bool {
	return c.ID == other.ID
}

// Less orders columns by name then ID, the data model's stated ordering.
func (c Column) Less(other Column) bool {
	if c.Name != other.Name {
		return c.Name < other.Name
	}
	return c.ID < other.ID
}

// ColumnSet is an order-independent set of columns, keyed by ID.
type ColumnSet map[int64]Column

func NewColumnSet(cols ...Column) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c.ID] = c
	}
	return s
}

func (s ColumnSet) Contains(c Column) bool {
	_, ok := s[c.ID]
	return ok
}

func (s ColumnSet) Add(c Column) {
	s[c.ID] = c
}

// SubsetOf reports whether every column in s is present in other — used by
// the planner's index-match and filter-pushdown checks (spec.md §4.4, §8).
func (s ColumnSet) SubsetOf(other ColumnSet) bool {
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}
