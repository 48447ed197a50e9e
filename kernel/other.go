package kernel

import "strings"

// BoolArray is a dense, nullable array of BOOL values.
type BoolArray struct {
	array
	data []bool
}

func NewBoolArray(data []bool, valid *Bitmask) *BoolArray {
	return &BoolArray{array: array{valid: valid, n: len(data)}, data: data}
}

func (a *BoolArray) Type() DataType { return Bool }
func (a *BoolArray) Get(i int) (bool, bool) {
	if !a.IsValid(i) {
		return false, false
	}
	return a.data[i], true
}

func (a *BoolArray) Gather(idx []int32) Array {
	return &BoolArray{array: array{valid: gatherValid(a.valid, a.n, idx), n: len(idx)}, data: gatherData(a.data, idx)}
}

func (a *BoolArray) Compress(mask *BoolArray) Array {
	data := compressData(a.data, mask)
	return &BoolArray{array: array{valid: compressValid(a.valid, mask), n: len(data)}, data: data}
}

func (a *BoolArray) Scatter(idx []int32, into Array) Array {
	dst := into.(*BoolArray)
	return &BoolArray{array: array{valid: dst.valid, n: dst.n}, data: scatterData(a.data, idx, dst.data)}
}

func (a *BoolArray) HashInto(seeds []uint64) {
	for i := range seeds {
		if a.IsValid(i) {
			seeds[i] = mixSeed(seeds[i], hashBool(a.data[i]))
		}
	}
}

func (a *BoolArray) SortKey(nullsFirst bool) []int32 {
	return sortPermutation(a.n, nullsFirst, a.IsValid, func(i, j int) bool { return !a.data[i] && a.data[j] })
}

func (a *BoolArray) Clone() Array {
	data := append([]bool(nil), a.data...)
	var valid *Bitmask
	if a.valid != nil {
		valid = a.valid.Clone()
	}
	return &BoolArray{array: array{valid: valid, n: a.n}, data: data}
}

// And AND-combines two BoolArrays, null-propagating: used by Filter to
// short-circuit a conjunction of predicates (spec.md §4.5).
func And(a, b *BoolArray) *BoolArray {
	n := checkLen(a.n, b.n)
	data := make([]bool, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		data[i] = a.data[i] && b.data[i]
		valid.Push(true)
	}
	return NewBoolArray(data, valid)
}

func Or(a, b *BoolArray) *BoolArray {
	n := checkLen(a.n, b.n)
	data := make([]bool, n)
	valid := NewBitmaskCapacity(n)
	for i := 0; i < n; i++ {
		if !a.IsValid(i) || !b.IsValid(i) {
			valid.Push(false)
			continue
		}
		data[i] = a.data[i] || b.data[i]
		valid.Push(true)
	}
	return NewBoolArray(data, valid)
}

// DateArray is a dense, nullable array of DATE values (days since epoch).
type DateArray struct {
	array
	data []int32
}

func NewDateArray(data []int32, valid *Bitmask) *DateArray {
	return &DateArray{array: array{valid: valid, n: len(data)}, data: data}
}

func (a *DateArray) Type() DataType { return Date }
func (a *DateArray) Get(i int) (int32, bool) {
	if !a.IsValid(i) {
		return 0, false
	}
	return a.data[i], true
}

func (a *DateArray) Gather(idx []int32) Array {
	return &DateArray{array: array{valid: gatherValid(a.valid, a.n, idx), n: len(idx)}, data: gatherData(a.data, idx)}
}

func (a *DateArray) Compress(mask *BoolArray) Array {
	data := compressData(a.data, mask)
	return &DateArray{array: array{valid: compressValid(a.valid, mask), n: len(data)}, data: data}
}

func (a *DateArray) Scatter(idx []int32, into Array) Array {
	dst := into.(*DateArray)
	return &DateArray{array: array{valid: dst.valid, n: dst.n}, data: scatterData(a.data, idx, dst.data)}
}

func (a *DateArray) HashInto(seeds []uint64) {
	for i := range seeds {
		if a.IsValid(i) {
			seeds[i] = mixSeed(seeds[i], hashInt64(int64(a.data[i])))
		}
	}
}

func (a *DateArray) SortKey(nullsFirst bool) []int32 {
	return sortPermutation(a.n, nullsFirst, a.IsValid, func(i, j int) bool { return a.data[i] < a.data[j] })
}

func (a *DateArray) Clone() Array {
	data := append([]int32(nil), a.data...)
	var valid *Bitmask
	if a.valid != nil {
		valid = a.valid.Clone()
	}
	return &DateArray{array: array{valid: valid, n: a.n}, data: data}
}

// TimestampArray is a dense, nullable array of TIMESTAMP values
// (microseconds since epoch UTC). It is a distinct type from I64Array
// despite sharing a representation, so DataType() and debug printing
// never confuse the two (spec.md §6: "timestamps are microseconds").
type TimestampArray struct {
	array
	data []int64
}

func NewTimestampArray(data []int64, valid *Bitmask) *TimestampArray {
	return &TimestampArray{array: array{valid: valid, n: len(data)}, data: data}
}

func (a *TimestampArray) Type() DataType { return Timestamp }
func (a *TimestampArray) Get(i int) (int64, bool) {
	if !a.IsValid(i) {
		return 0, false
	}
	return a.data[i], true
}

func (a *TimestampArray) Gather(idx []int32) Array {
	return &TimestampArray{array: array{valid: gatherValid(a.valid, a.n, idx), n: len(idx)}, data: gatherData(a.data, idx)}
}

func (a *TimestampArray) Compress(mask *BoolArray) Array {
	data := compressData(a.data, mask)
	return &TimestampArray{array: array{valid: compressValid(a.valid, mask), n: len(data)}, data: data}
}

func (a *TimestampArray) Scatter(idx []int32, into Array) Array {
	dst := into.(*TimestampArray)
	return &TimestampArray{array: array{valid: dst.valid, n: dst.n}, data: scatterData(a.data, idx, dst.data)}
}

func (a *TimestampArray) HashInto(seeds []uint64) {
	for i := range seeds {
		if a.IsValid(i) {
			seeds[i] = mixSeed(seeds[i], hashInt64(a.data[i]))
		}
	}
}

func (a *TimestampArray) SortKey(nullsFirst bool) []int32 {
	return sortPermutation(a.n, nullsFirst, a.IsValid, func(i, j int) bool { return a.data[i] < a.data[j] })
}

func (a *TimestampArray) Clone() Array {
	data := append([]int64(nil), a.data...)
	var valid *Bitmask
	if a.valid != nil {
		valid = a.valid.Clone()
	}
	return &TimestampArray{array: array{valid: valid, n: a.n}, data: data}
}

// StringArray is a dense, nullable array of STRING (UTF-8) values.
type StringArray struct {
	array
	data []string
}

func NewStringArray(data []string, valid *Bitmask) *StringArray {
	return &StringArray{array: array{valid: valid, n: len(data)}, data: data}
}

func (a *StringArray) Type() DataType { return String }
func (a *StringArray) Get(i int) (string, bool) {
	if !a.IsValid(i) {
		return "", false
	}
	return a.data[i], true
}

func (a *StringArray) Gather(idx []int32) Array {
	return &StringArray{array: array{valid: gatherValid(a.valid, a.n, idx), n: len(idx)}, data: gatherData(a.data, idx)}
}

func (a *StringArray) Compress(mask *BoolArray) Array {
	data := compressData(a.data, mask)
	return &StringArray{array: array{valid: compressValid(a.valid, mask), n: len(data)}, data: data}
}

func (a *StringArray) Scatter(idx []int32, into Array) Array {
	dst := into.(*StringArray)
	return &StringArray{array: array{valid: dst.valid, n: dst.n}, data: scatterData(a.data, idx, dst.data)}
}

func (a *StringArray) HashInto(seeds []uint64) {
	for i := range seeds {
		if a.IsValid(i) {
			seeds[i] = mixSeed(seeds[i], []byte(a.data[i]))
		}
	}
}

func (a *StringArray) SortKey(nullsFirst bool) []int32 {
	return sortPermutation(a.n, nullsFirst, a.IsValid, func(i, j int) bool { return strings.Compare(a.data[i], a.data[j]) < 0 })
}

func (a *StringArray) Clone() Array {
	data := append([]string(nil), a.data...)
	var valid *Bitmask
	if a.valid != nil {
		valid = a.valid.Clone()
	}
	return &StringArray{array: array{valid: valid, n: a.n}, data: data}
}

// CompareString applies op element-wise, producing a null-propagating
// BoolArray.
func CompareString(a, b *StringArray, op func(x, y string) bool) *BoolArray {
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
