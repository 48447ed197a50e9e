package kernel

// RecordBatch is an ordered list of (name, array) pairs of equal length
// (spec.md §3). Name here is presentation only; a batch's columns are
// always accompanied by a Schema of kernel.Column values elsewhere in the
// plan tree for identity-based lookups.
type RecordBatch struct {
	Names   []string
	Columns []Array
}

func NewRecordBatch(names []string, columns []Array) *RecordBatch {
	if len(names) != len(columns) {
		panic(ErrLengthMismatch.New(len(names), len(columns)))
	}
	n := -1
	for _, c := range columns {
		if n == -1 {
			n = c.Len()
		} else if c.Len() != n {
			panic(ErrLengthMismatch.New(c.Len(), n))
		}
	}
	return &RecordBatch{Names: names, Columns: columns}
}

func (b *RecordBatch) Len() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

func (b *RecordBatch) NumColumns() int { return len(b.Columns) }

func (b *RecordBatch) Column(name string) (Array, bool) {
	for i, n := range b.Names {
		if n == name {
			return b.Columns[i], true
		}
	}
	return nil, false
}

// Zip horizontally concatenates two batches of equal length, producing a
// batch with the union of their columns in a||b order.
func Zip(a, b *RecordBatch) *RecordBatch {
	if a.Len() != b.Len() {
		panic(ErrLengthMismatch.New(a.Len(), b.Len()))
	}
	names := append(append([]string(nil), a.Names...), b.Names...)
	cols := append(append([]Array(nil), a.Columns...), b.Columns...)
	return &RecordBatch{Names: names, Columns: cols}
}

// Cat vertically concatenates batches that share a schema (same column
// names in the same order), preserving that schema.
func Cat(batches []*RecordBatch) *RecordBatch {
	if len(batches) == 0 {
		return &RecordBatch{}
	}
	first := batches[0]
	total := 0
	for _, b := range batches {
		total += b.Len()
	}
	// Concatenate column by column, dispatching on the array type in
	// catColumn.
	outCols := make([]Array, len(first.Columns))
	for ci := range first.Columns {
		outCols[ci] = catColumn(batches, ci, total)
	}
	return &RecordBatch{Names: append([]string(nil), first.Names...), Columns: outCols}
}

func catColumn(batches []*RecordBatch, ci int, total int) Array {
	switch batches[0].Columns[ci].(type) {
	case *I64Array:
		data := make([]int64, 0, total)
		valid := NewBitmaskCapacity(total)
		for _, b := range batches {
			c := b.Columns[ci].(*I64Array)
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				data = append(data, v)
				valid.Push(ok)
			}
		}
		return NewI64Array(data, valid)
	case *F64Array:
		data := make([]float64, 0, total)
		valid := NewBitmaskCapacity(total)
		for _, b := range batches {
			c := b.Columns[ci].(*F64Array)
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				data = append(data, v)
				valid.Push(ok)
			}
		}
		return NewF64Array(data, valid)
	case *BoolArray:
		data := make([]bool, 0, total)
		valid := NewBitmaskCapacity(total)
		for _, b := range batches {
			c := b.Columns[ci].(*BoolArray)
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				data = append(data, v)
				valid.Push(ok)
			}
		}
		return NewBoolArray(data, valid)
	case *DateArray:
		data := make([]int32, 0, total)
		valid := NewBitmaskCapacity(total)
		for _, b := range batches {
			c := b.Columns[ci].(*DateArray)
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				data = append(data, v)
				valid.Push(ok)
			}
		}
		return NewDateArray(data, valid)
	case *TimestampArray:
		data := make([]int64, 0, total)
		valid := NewBitmaskCapacity(total)
		for _, b := range batches {
			c := b.Columns[ci].(*TimestampArray)
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				data = append(data, v)
				valid.Push(ok)
			}
		}
		return NewTimestampArray(data, valid)
	case *StringArray:
		data := make([]string, 0, total)
		valid := NewBitmaskCapacity(total)
		for _, b := range batches {
			c := b.Columns[ci].(*StringArray)
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				data = append(data, v)
				valid.Push(ok)
			}
		}
		return NewStringArray(data, valid)
	default:
		panic(ErrUnsupportedType.New("unknown array kind in Cat"))
	}
}

// Gather broadcasts Array.Gather across every column.
func (b *RecordBatch) Gather(idx []int32) *RecordBatch {
	cols := make([]Array, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = c.Gather(idx)
	}
	return &RecordBatch{Names: b.Names, Columns: cols}
}

// Compress broadcasts Array.Compress across every column.
func (b *RecordBatch) Compress(mask *BoolArray) *RecordBatch {
	cols := make([]Array, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = c.Compress(mask)
	}
	return &RecordBatch{Names: b.Names, Columns: cols}
}

// Scatter broadcasts Array.Scatter across every column of into.
func (b *RecordBatch) Scatter(idx []int32, into *RecordBatch) *RecordBatch {
	cols := make([]Array, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = c.Scatter(idx, into.Columns[i])
	}
	return &RecordBatch{Names: b.Names, Columns: cols}
}

// Hash computes HashColumns over a subset of the batch's columns, for
// hash-join/hash-aggregate partitioning.
func (b *RecordBatch) Hash(names ...string) []uint64 {
	cols := make([]Array, 0, len(names))
	for _, n := range names {
		c, ok := b.Column(n)
		if !ok {
			panic(ErrUnsupportedType.New("no such column: " + n))
		}
		cols = append(cols, c)
	}
	return HashColumns(cols)
}
