package exec

import (
	"io"

	"github.com/dolthub/zeeql/hashtable"
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// Aggregate materializes all of Input, buckets rows by GroupBy via
// hashtable.Build, and computes one accumulator per Funcs entry per
// group (spec.md §4.2 "hash aggregate"). Grouping with zero GroupBy
// columns (a whole-input aggregate) is the degenerate single-group case.
type Aggregate struct {
	Input       Operator
	GroupByCols []string // column names the hash table groups on
	Funcs       []plan.AggFunc
	OutputNames []string // GroupByCols... followed by one name per Funcs entry

	done bool
}

func (a *Aggregate) Next() (*kernel.RecordBatch, error) {
	if a.done {
		return nil, io.EOF
	}
	a.done = true

	var batches []*kernel.RecordBatch
	for {
		b, err := a.Input.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if len(batches) == 0 {
		return emptyOutput(a.OutputNames), nil
	}
	all := kernel.Cat(batches)

	if len(a.GroupByCols) == 0 {
		return a.aggregateWholeInput(all)
	}

	ht := hashtable.Build(all, a.GroupByCols, bucketCountFor(all.Len()))
	groups := groupRows(ht, all, a.GroupByCols)
	return a.buildOutput(all, groups)
}

func bucketCountFor(rows int) int {
	n := 16
	for n < rows {
		n *= 2
	}
	return n
}

// groupRows partitions all's rows into groups of equal GroupByCols
// values, using the hash table purely to avoid an O(n^2) comparison scan
// (spec.md §4.2: "partition by hash(group columns), compare within the
// bucket").
func groupRows(ht *hashtable.HashTable, all *kernel.RecordBatch, groupByCols []string) [][]int32 {
	assigned := make([]bool, all.Len())
	var groups [][]int32
	hashes := all.Hash(groupByCols...)
	for row := 0; row < all.Len(); row++ {
		if assigned[row] {
			continue
		}
		group := []int32{int32(row)}
		assigned[row] = true
		for _, candidate := range ht.Probe(hashes[row]) {
			c := int(candidate)
			if c <= row || assigned[c] {
				continue
			}
			if hashtable.KeysEqual(all, row, all, c, groupByCols, groupByCols) {
				group = append(group, candidate)
				assigned[c] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func (a *Aggregate) aggregateWholeInput(all *kernel.RecordBatch) (*kernel.RecordBatch, error) {
	group := make([]int32, all.Len())
	for i := range group {
		group[i] = int32(i)
	}
	groups := [][]int32{group}
	if all.Len() == 0 {
		groups = [][]int32{{}}
	}
	return a.buildOutput(all, groups)
}

func (a *Aggregate) buildOutput(all *kernel.RecordBatch, groups [][]int32) (*kernel.RecordBatch, error) {
	cols := make([]kernel.Array, len(a.OutputNames))
	for gi := range a.GroupByCols {
		builder := kernel.NewBuilder(columnTypeOf(all, a.GroupByCols[gi]), len(groups))
		for _, group := range groups {
			if len(group) == 0 {
				kernel.AppendFrom(builder, mustColumn(all, a.GroupByCols[gi]), 0)
				continue
			}
			kernel.AppendFrom(builder, mustColumn(all, a.GroupByCols[gi]), int(group[0]))
		}
		cols[gi] = builder
	}
	base := len(a.GroupByCols)
	for fi, f := range a.Funcs {
		cols[base+fi] = computeAgg(f, all, groups)
	}
	return kernel.NewRecordBatch(a.OutputNames, cols), nil
}

func mustColumn(batch *kernel.RecordBatch, name string) kernel.Array {
	c, ok := batch.Column(name)
	if !ok {
		panic(plan.ErrChildCount.New(1, 0))
	}
	return c
}

func columnTypeOf(batch *kernel.RecordBatch, name string) kernel.DataType {
	return mustColumn(batch, name).Type()
}

func emptyOutput(names []string) *kernel.RecordBatch {
	cols := make([]kernel.Array, len(names))
	for i := range cols {
		cols[i] = kernel.NewI64Array(nil, kernel.Trues(0))
	}
	return kernel.NewRecordBatch(names, cols)
}

// computeAgg evaluates one aggregate function over every group, producing
// the function's one output column (spec.md §4.2: COUNT, SUM, MIN, MAX;
// AVG never reaches here since rewrite.RewriteAvg splits it beforehand).
func computeAgg(f plan.AggFunc, all *kernel.RecordBatch, groups [][]int32) kernel.Array {
	switch f.Func {
	case "COUNT":
		data := make([]int64, len(groups))
		for i, g := range groups {
			if f.Arg == nil {
				data[i] = int64(len(g))
				continue
			}
			arg := Eval(f.Arg, all)
			n := int64(0)
			for _, row := range g {
				if arg.IsValid(int(row)) {
					n++
				}
			}
			data[i] = n
		}
		return kernel.NewI64Array(data, kernel.Trues(len(groups)))
	case "SUM":
		arg := Eval(f.Arg, all)
		switch arg.(type) {
		case *kernel.F64Array:
			data := make([]float64, len(groups))
			valid := kernel.NewBitmaskCapacity(len(groups))
			for i, g := range groups {
				sum, any := 0.0, false
				for _, row := range g {
					if v, ok := arg.(*kernel.F64Array).Get(int(row)); ok {
						sum += v
						any = true
					}
				}
				data[i] = sum
				valid.Push(any)
			}
			return kernel.NewF64Array(data, valid)
		default:
			ia := arg.(*kernel.I64Array)
			data := make([]int64, len(groups))
			valid := kernel.NewBitmaskCapacity(len(groups))
			for i, g := range groups {
				var sum int64
				any := false
				for _, row := range g {
					if v, ok := ia.Get(int(row)); ok {
						sum += v
						any = true
					}
				}
				data[i] = sum
				valid.Push(any)
			}
			return kernel.NewI64Array(data, valid)
		}
	case "MIN", "MAX":
		return computeMinMax(f, all, groups)
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}

func computeMinMax(f plan.AggFunc, all *kernel.RecordBatch, groups [][]int32) kernel.Array {
	arg := Eval(f.Arg, all)
	wantMax := f.Func == "MAX"
	switch a := arg.(type) {
	case *kernel.I64Array:
		data := make([]int64, len(groups))
		valid := kernel.NewBitmaskCapacity(len(groups))
		for i, g := range groups {
			best, any := int64(0), false
			for _, row := range g {
				v, ok := a.Get(int(row))
				if !ok {
					continue
				}
				if !any || (wantMax && v > best) || (!wantMax && v < best) {
					best, any = v, true
				}
			}
			data[i] = best
			valid.Push(any)
		}
		return kernel.NewI64Array(data, valid)
	case *kernel.F64Array:
		data := make([]float64, len(groups))
		valid := kernel.NewBitmaskCapacity(len(groups))
		for i, g := range groups {
			best, any := 0.0, false
			for _, row := range g {
				v, ok := a.Get(int(row))
				if !ok {
					continue
				}
				if !any || (wantMax && v > best) || (!wantMax && v < best) {
					best, any = v, true
				}
			}
			data[i] = best
			valid.Push(any)
		}
		return kernel.NewF64Array(data, valid)
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}
