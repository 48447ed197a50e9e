package kernel

import "sort"

// I64Array is a dense, nullable array of INT64 values.
type I64Array struct {
	array
	data []int64
}

func NewI64Array(data []int64, valid *Bitmask) *I64Array {
	return &I64Array{array: array{valid: valid, n: len(data)}, data: data}
}

func (a *I64Array) Type() DataType { return Int64 }
func (a *I64Array) Get(i int) (int64, bool) {
	if !a.IsValid(i) {
		return 0, false
	}
	return a.data[i], true
}

func (a *I64Array) Gather(idx []int32) Array {
	return &I64Array{array: array{valid: gatherValid(a.valid, a.n, idx), n: len(idx)}, data: gatherData(a.data, idx)}
}

func (a *I64Array) Compress(mask *BoolArray) Array {
	data := compressData(a.data, mask)
	return &I64Array{array: array{valid: compressValid(a.valid, mask), n: len(data)}, data: data}
}

func (a *I64Array) Scatter(idx []int32, into Array) Array {
	dst := into.(*I64Array)
	return &I64Array{array: array{valid: dst.valid, n: dst.n}, data: scatterData(a.data, idx, dst.data)}
}

func (a *I64Array) HashInto(seeds []uint64) {
	for i := range seeds {
		if a.IsValid(i) {
			seeds[i] = mixSeed(seeds[i], hashInt64(a.data[i]))
		}
	}
}

func (a *I64Array) SortKey(nullsFirst bool) []int32 {
	return sortPermutation(a.n, nullsFirst, a.IsValid, func(i, j int) bool { return a.data[i] < a.data[j] })
}

func (a *I64Array) Clone() Array {
	data := append([]int64(nil), a.data...)
	var valid *Bitmask
	if a.valid != nil {
		valid = a.valid.Clone()
	}
	return &I64Array{array: array{valid: valid, n: a.n}, data: data}
}

// F64Array is a dense, nullable array of FLOAT64 values.
type F64Array struct {
	array
	data []float64
}

func NewF64Array(data []float64, valid *Bitmask) *F64Array {
	return &F64Array{array: array{valid: valid, n: len(data)}, data: data}
}

func (a *F64Array) Type() DataType { return Float64 }
func (a *F64Array) Get(i int) (float64, bool) {
	if !a.IsValid(i) {
		return 0, false
	}
	return a.data[i], true
}

func (a *F64Array) Gather(idx []int32) Array {
	return &F64Array{array: array{valid: gatherValid(a.valid, a.n, idx), n: len(idx)}, data: gatherData(a.data, idx)}
}

func (a *F64Array) Compress(mask *BoolArray) Array {
	data := compressData(a.data, mask)
	return &F64Array{array: array{valid: compressValid(a.valid, mask), n: len(data)}, data: data}
}

func (a *F64Array) Scatter(idx []int32, into Array) Array {
	dst := into.(*F64Array)
	return &F64Array{array: array{valid: dst.valid, n: dst.n}, data: scatterData(a.data, idx, dst.data)}
}

func (a *F64Array) HashInto(seeds []uint64) {
	for i := range seeds {
		if a.IsValid(i) {
			seeds[i] = mixSeed(seeds[i], hashFloat64(a.data[i]))
		}
	}
}

func (a *F64Array) SortKey(nullsFirst bool) []int32 {
	return sortPermutation(a.n, nullsFirst, a.IsValid, func(i, j int) bool { return a.data[i] < a.data[j] })
}

func (a *F64Array) Clone() Array {
	data := append([]float64(nil), a.data...)
	var valid *Bitmask
	if a.valid != nil {
		valid = a.valid.Clone()
	}
	return &F64Array{array: array{valid: valid, n: a.n}, data: data}
}

// ---- arithmetic / comparison (null-propagating per spec.md §4.1) ----

// AddI64 adds two INT64 arrays element-wise; a null in either operand
// propagates to a null result.
func AddI64(a, b *I64Array) *I64Array {
	return binOpI64(a, b, func(x, y int64) int64 { return x + y })
}

func SubI64(a, b *I64Array) *I64Array {
	return binOpI64(a, b, func(x, y int64) int64 { return x - y })
}

func MulI64(a, b *I64Array) *I64Array {
	return binOpI64(a, b, func(x, y int64) int64 { return x * y })
}

// DivI64 divides element-wise. A zero divisor is a domain error
// (spec.md §4.1): the caller is expected to check err and record it on the
// batch's error channel rather than letting this panic escape to a client.
func DivI64(a, b *I64Array) (*I64Array, error) {
	n := checkLen(a.n, b.n)
	data := make([]int64, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		if b.data[i] == 0 {
			return nil, ErrDivideByZero.New()
		}
		data[i] = a.data[i] / b.data[i]
		valid.Push(true)
	}
	return NewI64Array(data, valid), nil
}

func binOpI64(a, b *I64Array, op func(x, y int64) int64) *I64Array {
	n := checkLen(a.n, b.n)
	data := make([]int64, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		data[i] = op(a.data[i], b.data[i])
		valid.Push(true)
	}
	return NewI64Array(data, valid)
}

// CompareI64 applies op element-wise, producing a null-propagating
// BoolArray (spec.md §4.1: "a comparison on any null yields null").
func CompareI64(a, b *I64Array, op func(x, y int64) bool) *BoolArray {
	n := checkLen(a.n, b.n)
	data := make([]bool, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		data[i] = op(a.data[i], b.data[i])
		valid.Push(true)
	}
	return NewBoolArray(data, valid)
}

func AddF64(a, b *F64Array) *F64Array {
	return binOpF64(a, b, func(x, y float64) float64 { return x + y })
}

func SubF64(a, b *F64Array) *F64Array {
	return binOpF64(a, b, func(x, y float64) float64 { return x - y })
}

func MulF64(a, b *F64Array) *F64Array {
	return binOpF64(a, b, func(x, y float64) float64 { return x * y })
}

// DivF64 divides element-wise; a zero divisor is a domain error, matching
// DivI64 (IEEE Inf/NaN semantics are not exposed to the query layer).
func DivF64(a, b *F64Array) (*F64Array, error) {
	n := checkLen(a.n, b.n)
	data := make([]float64, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		if b.data[i] == 0 {
			return nil, ErrDivideByZero.New()
		}
		data[i] = a.data[i] / b.data[i]
		valid.Push(true)
	}
	return NewF64Array(data, valid), nil
}

func binOpF64(a, b *F64Array, op func(x, y float64) float64) *F64Array {
	n := checkLen(a.n, b.n)
	data := make([]float64, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		data[i] = op(a.data[i], b.data[i])
		valid.Push(true)
	}
	return NewF64Array(data, valid)
}

func CompareF64(a, b *F64Array, op func(x, y float64) bool) *BoolArray {
	n := checkLen(a.n, b.n)
	data := make([]bool, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		data[i] = op(a.data[i], b.data[i])
		valid.Push(true)
	}
	return NewBoolArray(data, valid)
}

func checkLen(a, b int) int {
	if a != b {
		panic(ErrLengthMismatch.New(a, b))
	}
	return a
}

// sortPermutation produces a stable sort permutation (spec.md §4.1: "by
// value then original index"). Nulls sort first or last per nullsFirst.
func sortPermutation(n int, nullsFirst bool, isValid func(int) bool, less func(i, j int) bool) []int32 {
	perm := make([]int32, n)
	for i := range perm {
		perm[i] = int32(i)
	}
	sort.SliceStable(perm, func(x, y int) bool {
		i, j := int(perm[x]), int(perm[y])
		iv, jv := isValid(i), isValid(j)
		if iv != jv {
			if nullsFirst {
				return !iv
			}
			return iv
		}
		if !iv {
			return false
		}
		return less(i, j)
	})
	return perm
}
