package kernel

// Array is the common contract every typed, nullable, dense array
// satisfies (spec.md §3/§4.1): length, optional validity, gather/compress/
// scatter, stable sort, and compositional hashing. Arithmetic and
// comparison are defined on the concrete array types (I64Array, F64Array,
// ...) rather than on this interface, since their result types differ
// (promoted numeric type vs. bool) the way a generic interface method
// can't express cleanly in Go.
type Array interface {
	Len() int
	Type() DataType
	IsValid(i int) bool
	// Gather returns a new array containing the value at each index in
	// idx; a negative index or a gap produces a null. Out-of-range
	// non-negative indexes panic with ErrIndexOutOfRange (an internal
	// invariant violation, not a domain error).
	Gather(idx []int32) Array
	// Compress returns the subsequence of rows where mask is true.
	Compress(mask *BoolArray) Array
	// Scatter writes this array's values into a clone of into at the
	// given indexes, returning the clone. len(idx) must equal a.Len().
	Scatter(idx []int32, into Array) Array
	// HashInto mixes this array's per-row bytes into seeds, xxh3-style
	// (spec.md §4.1): seeds[i] = hash(seeds[i], bytes(a[i])).
	HashInto(seeds []uint64)
	// SortKey returns a permutation that would stable-sort this array
	// alone; nullsFirst controls where nulls land.
	SortKey(nullsFirst bool) []int32
	// Clone returns an independent deep copy.
	Clone() Array
}

// array holds the fields shared by every primitive array: a validity
// bitmap (nil means "no nulls, skip the check") and a length. Concrete
// types embed it.
type array struct {
	valid *Bitmask
	n     int
}

func (a *array) Len() int { return a.n }

func (a *array) IsValid(i int) bool {
	if a.valid == nil {
		return true
	}
	return a.valid.Get(i)
}

func gatherValid(valid *Bitmask, n int, idx []int32) *Bitmask {
	out := NewBitmaskCapacity(len(idx))
	for _, i := range idx {
		if i < 0 {
			out.Push(false)
			continue
		}
		if int(i) >= n {
			panic(ErrIndexOutOfRange.New(i, n))
		}
		if valid == nil {
			out.Push(true)
		} else {
			out.Push(valid.Get(int(i)))
		}
	}
	return out
}

func compressValid(valid *Bitmask, mask *BoolArray) *Bitmask {
	out := NewBitmask()
	for i := 0; i < mask.Len(); i++ {
		if mask.IsValid(i) && mask.data[i] {
			if valid == nil {
				out.Push(true)
			} else {
				out.Push(valid.Get(i))
			}
		}
	}
	return out
}
