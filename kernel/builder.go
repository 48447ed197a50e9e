package kernel

// The Append* methods below let a page's column stores grow incrementally
// (spec.md §4.3: "Append records to the last page... if it fills, allocate
// a new page"), something the otherwise-immutable array types don't need
// for read-side kernel operations but storage's PAX pages do.

func NewI64Builder(capacity int) *I64Array {
	return &I64Array{array: array{valid: NewBitmaskCapacity(capacity)}, data: make([]int64, 0, capacity)}
}

func (a *I64Array) AppendValue(v int64, valid bool) {
	a.data = append(a.data, v)
	a.valid.Push(valid)
	a.n++
}

func NewF64Builder(capacity int) *F64Array {
	return &F64Array{array: array{valid: NewBitmaskCapacity(capacity)}, data: make([]float64, 0, capacity)}
}

func (a *F64Array) AppendValue(v float64, valid bool) {
	a.data = append(a.data, v)
	a.valid.Push(valid)
	a.n++
}

func NewBoolBuilder(capacity int) *BoolArray {
	return &BoolArray{array: array{valid: NewBitmaskCapacity(capacity)}, data: make([]bool, 0, capacity)}
}

func (a *BoolArray) AppendValue(v bool, valid bool) {
	a.data = append(a.data, v)
	a.valid.Push(valid)
	a.n++
}

func NewDateBuilder(capacity int) *DateArray {
	return &DateArray{array: array{valid: NewBitmaskCapacity(capacity)}, data: make([]int32, 0, capacity)}
}

func (a *DateArray) AppendValue(v int32, valid bool) {
	a.data = append(a.data, v)
	a.valid.Push(valid)
	a.n++
}

func NewTimestampBuilder(capacity int) *TimestampArray {
	return &TimestampArray{array: array{valid: NewBitmaskCapacity(capacity)}, data: make([]int64, 0, capacity)}
}

func (a *TimestampArray) AppendValue(v int64, valid bool) {
	a.data = append(a.data, v)
	a.valid.Push(valid)
	a.n++
}

func NewStringBuilder(capacity int) *StringArray {
	return &StringArray{array: array{valid: NewBitmaskCapacity(capacity)}, data: make([]string, 0, capacity)}
}

func (a *StringArray) AppendValue(v string, valid bool) {
	a.data = append(a.data, v)
	a.valid.Push(valid)
	a.n++
}

// AppendFrom appends row i of src onto the growable array dst. Both must
// be the same concrete type; mismatches are an internal invariant
// violation (the caller is expected to have checked the schema already).
func AppendFrom(dst Array, src Array, i int) {
	switch d := dst.(type) {
	case *I64Array:
		v, ok := src.(*I64Array).Get(i)
		d.AppendValue(v, ok)
	case *F64Array:
		v, ok := src.(*F64Array).Get(i)
		d.AppendValue(v, ok)
	case *BoolArray:
		v, ok := src.(*BoolArray).Get(i)
		d.AppendValue(v, ok)
	case *DateArray:
		v, ok := src.(*DateArray).Get(i)
		d.AppendValue(v, ok)
	case *TimestampArray:
		v, ok := src.(*TimestampArray).Get(i)
		d.AppendValue(v, ok)
	case *StringArray:
		v, ok := src.(*StringArray).Get(i)
		d.AppendValue(v, ok)
	default:
		panic(ErrUnsupportedType.New("unknown array kind in AppendFrom"))
	}
}

// NewBuilder returns an empty, growable array of the given type with
// capacity hinted.
func NewBuilder(t DataType, capacity int) Array {
	switch t {
	case Bool:
		return NewBoolBuilder(capacity)
	case Int64:
		return NewI64Builder(capacity)
	case Float64:
		return NewF64Builder(capacity)
	case Date:
		return NewDateBuilder(capacity)
	case Timestamp:
		return NewTimestampBuilder(capacity)
	case String:
		return NewStringBuilder(capacity)
	default:
		panic(ErrUnsupportedType.New(t.String()))
	}
}
