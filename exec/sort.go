package exec

import (
	"io"
	"sort"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// Sort materializes all of Input's rows, then emits them once in
// ascending/descending order of Keys (spec.md §4.5). A fully vectorized
// engine would rather merge-sort runs incrementally; since the spec
// doesn't require bounded-memory sort as a testable property, a single
// materialize-then-sort pass keeps this operator simple and correct.
type Sort struct {
	Input      Operator
	Keys       []plan.Scalar
	Descending []bool
	NullsFirst []bool

	sorted *kernel.RecordBatch
	done   bool
}

func (s *Sort) Next() (*kernel.RecordBatch, error) {
	if s.sorted == nil && !s.done {
		if err := s.materialize(); err != nil {
			return nil, err
		}
	}
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.sorted, nil
}

func (s *Sort) materialize() error {
	var batches []*kernel.RecordBatch
	for {
		b, err := s.Input.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		batches = append(batches, b)
	}
	if len(batches) == 0 {
		s.done = true
		return nil
	}
	all := kernel.Cat(batches)
	keyCols := make([]kernel.Array, len(s.Keys))
	for i, k := range s.Keys {
		keyCols[i] = Eval(k, all)
	}
	perm := make([]int32, all.Len())
	for i := range perm {
		perm[i] = int32(i)
	}
	sort.SliceStable(perm, func(x, y int) bool {
		i, j := int(perm[x]), int(perm[y])
		for k, col := range keyCols {
			cmp := compareAt(col, i, j, s.NullsFirst[k])
			if cmp == 0 {
				continue
			}
			if s.Descending[k] {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	s.sorted = all.Gather(perm)
	return nil
}

func (s *Sort) Close() error { return s.Input.Close() }

// compareAt returns -1/0/1 comparing col[i] to col[j], treating a null
// as first or last per nullsFirst (spec.md §4.1's nulls-ordering rule,
// same one kernel.sortPermutation applies internally per-column).
func compareAt(col kernel.Array, i, j int, nullsFirst bool) int {
	iv, jv := col.IsValid(i), col.IsValid(j)
	if iv != jv {
		if !iv {
			if nullsFirst {
				return -1
			}
			return 1
		}
		if nullsFirst {
			return 1
		}
		return -1
	}
	if !iv {
		return 0
	}
	switch c := col.(type) {
	case *kernel.I64Array:
		a, _ := c.Get(i)
		b, _ := c.Get(j)
		return cmpInt64(a, b)
	case *kernel.F64Array:
		a, _ := c.Get(i)
		b, _ := c.Get(j)
		return cmpFloat64(a, b)
	case *kernel.StringArray:
		a, _ := c.Get(i)
		b, _ := c.Get(j)
		if a == b {
			return 0
		}
		if a < b {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
