package exec

import (
	"io"

	"github.com/dolthub/zeeql/hashtable"
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// HashJoin materializes Right (the build side) into a hashtable, then
// streams Left (the probe side) batch by batch, emitting matched row
// pairs (spec.md §4.2). Only inner join is implemented directly; left/
// semi/anti joins reuse the same probe loop with a different row-survival
// rule, per spec.md §4.2's note that join variants share one execution
// core.
type HashJoin struct {
	Left, Right Operator
	LeftKeys    []plan.Scalar
	RightKeys   []plan.Scalar
	Predicate   plan.Scalar // residual filter beyond key equality, may be nil
	Type        plan.JoinType
	OutputNames []string

	built      bool
	ht         *hashtable.HashTable
	rightBatch *kernel.RecordBatch
	rightNames []string
	leftNames  []string
}

func (j *HashJoin) build() error {
	var batches []*kernel.RecordBatch
	for {
		b, err := j.Right.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		batches = append(batches, b)
	}
	if len(batches) == 0 {
		j.rightBatch = emptyOutput(nil)
	} else {
		j.rightBatch = kernel.Cat(batches)
	}
	rightKeyCols := evalKeyNames(j.rightBatch, j.RightKeys, "r_key_")
	augmented := kernel.Zip(j.rightBatch, rightKeyCols.batch)
	j.ht = hashtable.Build(augmented, rightKeyCols.names, bucketCountFor(augmented.Len()))
	j.rightBatch = augmented
	j.built = true
	return nil
}

type keyCols struct {
	batch *kernel.RecordBatch
	names []string
}

func evalKeyNames(batch *kernel.RecordBatch, keys []plan.Scalar, prefix string) keyCols {
	names := make([]string, len(keys))
	cols := make([]kernel.Array, len(keys))
	for i, k := range keys {
		names[i] = prefix + itoa(i)
		cols[i] = Eval(k, batch)
	}
	return keyCols{batch: kernel.NewRecordBatch(names, cols), names: names}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func (j *HashJoin) Next() (*kernel.RecordBatch, error) {
	if !j.built {
		if err := j.build(); err != nil {
			return nil, err
		}
	}
	for {
		left, err := j.Left.Next()
		if err != nil {
			return nil, err
		}
		leftKeyCols := evalKeyNames(left, j.LeftKeys, "l_key_")
		augmentedLeft := kernel.Zip(left, leftKeyCols.batch)
		hashes := augmentedLeft.Hash(leftKeyCols.names...)

		if j.Type == plan.SemiJoin || j.Type == plan.AntiJoin {
			out, ok := j.semiAntiRows(left, augmentedLeft, leftKeyCols, hashes)
			if !ok {
				continue
			}
			return out, nil
		}

		var leftIdx, rightIdx []int32
		for row := 0; row < augmentedLeft.Len(); row++ {
			matched := false
			for _, cand := range j.ht.Probe(hashes[row]) {
				if keysEqualByName(j.rightBatch, int(cand), augmentedLeft, row, j.ht.KeyNames(), leftKeyCols.names) {
					leftIdx = append(leftIdx, int32(row))
					rightIdx = append(rightIdx, cand)
					matched = true
				}
			}
			if !matched && j.Type == plan.LeftJoin {
				leftIdx = append(leftIdx, int32(row))
				rightIdx = append(rightIdx, -1)
			}
		}
		if len(leftIdx) == 0 {
			continue
		}
		out := joinGather(augmentedLeft, j.rightBatch, leftIdx, rightIdx, j.OutputNames)
		if j.Predicate != nil {
			mask := Eval(j.Predicate, out).(*kernel.BoolArray)
			out = out.Compress(mask)
		}
		if out.Len() == 0 {
			continue
		}
		return out, nil
	}
}

func keysEqualByName(build *kernel.RecordBatch, buildRow int, probe *kernel.RecordBatch, probeRow int, buildNames, probeNames []string) bool {
	return hashtable.KeysEqual(build, buildRow, probe, probeRow, buildNames, probeNames)
}

// semiAntiRows evaluates SemiJoin/AntiJoin row survival: a left row
// survives a SemiJoin iff at least one build-side row satisfies both the
// hash key equality and the residual Predicate, and survives an AntiJoin
// iff none does. Unlike Inner/Left join, the output never carries
// right-side columns, so the residual predicate must be checked per
// candidate pair rather than as a post-gather filter.
func (j *HashJoin) semiAntiRows(left, augmentedLeft *kernel.RecordBatch, leftKeyCols keyCols, hashes []uint64) (*kernel.RecordBatch, bool) {
	var keep []int32
	for row := 0; row < augmentedLeft.Len(); row++ {
		matched := false
		for _, cand := range j.ht.Probe(hashes[row]) {
			if !keysEqualByName(j.rightBatch, int(cand), augmentedLeft, row, j.ht.KeyNames(), leftKeyCols.names) {
				continue
			}
			if j.Predicate == nil {
				matched = true
				break
			}
			pair := joinGather(augmentedLeft, j.rightBatch, []int32{int32(row)}, []int32{cand}, nil)
			ok, _ := Eval(j.Predicate, pair).(*kernel.BoolArray).Get(0)
			if ok {
				matched = true
				break
			}
		}
		if matched == (j.Type == plan.SemiJoin) {
			keep = append(keep, int32(row))
		}
	}
	if len(keep) == 0 {
		return nil, false
	}
	return left.Gather(keep), true
}

// joinGather builds the joined output by gathering leftIdx rows of left
// and rightIdx rows of right (a -1 rightIdx row means "no match": its
// columns come back all-null, for LEFT JOIN).
func joinGather(left, right *kernel.RecordBatch, leftIdx, rightIdx []int32, names []string) *kernel.RecordBatch {
	l := left.Gather(leftIdx)
	rIdxClamped := make([]int32, len(rightIdx))
	nullMask := make([]bool, len(rightIdx))
	for i, ri := range rightIdx {
		if ri < 0 {
			rIdxClamped[i] = 0
			nullMask[i] = true
		} else {
			rIdxClamped[i] = ri
		}
	}
	r := right.Gather(rIdxClamped)
	if anyTrue(nullMask) {
		r = nullOutRows(r, nullMask)
	}
	zipped := kernel.Zip(l, r)
	if len(names) == 0 {
		return zipped
	}
	return &kernel.RecordBatch{Names: names, Columns: zipped.Columns}
}

func anyTrue(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}

func nullOutRows(batch *kernel.RecordBatch, mask []bool) *kernel.RecordBatch {
	cols := make([]kernel.Array, len(batch.Columns))
	for ci, c := range batch.Columns {
		valid := kernel.Falses(c.Len())
		for i := 0; i < c.Len(); i++ {
			if !mask[i] {
				valid.Set(i, c.IsValid(i))
			}
		}
		cols[ci] = rebuildWithValidity(c, valid)
	}
	return &kernel.RecordBatch{Names: batch.Names, Columns: cols}
}

func rebuildWithValidity(a kernel.Array, valid *kernel.Bitmask) kernel.Array {
	switch v := a.(type) {
	case *kernel.I64Array:
		data := make([]int64, v.Len())
		for i := 0; i < v.Len(); i++ {
			if x, ok := v.Get(i); ok {
				data[i] = x
			}
		}
		return kernel.NewI64Array(data, valid)
	case *kernel.F64Array:
		data := make([]float64, v.Len())
		for i := 0; i < v.Len(); i++ {
			if x, ok := v.Get(i); ok {
				data[i] = x
			}
		}
		return kernel.NewF64Array(data, valid)
	case *kernel.StringArray:
		data := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			if x, ok := v.Get(i); ok {
				data[i] = x
			}
		}
		return kernel.NewStringArray(data, valid)
	default:
		idx := make([]int32, a.Len())
		for i := range idx {
			idx[i] = int32(i)
			if !valid.Get(i) {
				idx[i] = -1
			}
		}
		return a.Gather(idx)
	}
}

func (j *HashJoin) Close() error {
	if err := j.Left.Close(); err != nil {
		return err
	}
	return j.Right.Close()
}

// NestedLoopJoin evaluates Predicate for every (left row, right row) pair
// without building a hash table; the memo phase only picks this when the
// build side is small enough that hashtable overhead dominates (spec.md
// §4.4).
type NestedLoopJoin struct {
	Left, Right Operator
	Predicate   plan.Scalar
	Type        plan.JoinType
	OutputNames []string

	rightBatch *kernel.RecordBatch
	built      bool
}

func (j *NestedLoopJoin) build() error {
	var batches []*kernel.RecordBatch
	for {
		b, err := j.Right.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		batches = append(batches, b)
	}
	if len(batches) == 0 {
		j.rightBatch = emptyOutput(nil)
	} else {
		j.rightBatch = kernel.Cat(batches)
	}
	j.built = true
	return nil
}

func (j *NestedLoopJoin) Next() (*kernel.RecordBatch, error) {
	if !j.built {
		if err := j.build(); err != nil {
			return nil, err
		}
	}
	for {
		left, err := j.Left.Next()
		if err != nil {
			return nil, err
		}
		var leftIdx, rightIdx []int32
		for li := 0; li < left.Len(); li++ {
			matched := false
			for ri := 0; ri < j.rightBatch.Len(); ri++ {
				pairBatch := joinGather(left, j.rightBatch, []int32{int32(li)}, []int32{int32(ri)}, nil)
				if j.Predicate == nil {
					matched = true
					leftIdx = append(leftIdx, int32(li))
					rightIdx = append(rightIdx, int32(ri))
					continue
				}
				mask := Eval(j.Predicate, pairBatch).(*kernel.BoolArray)
				ok, valid := mask.Get(0)
				if valid && ok {
					matched = true
					leftIdx = append(leftIdx, int32(li))
					rightIdx = append(rightIdx, int32(ri))
				}
			}
			if !matched && j.Type == plan.LeftJoin {
				leftIdx = append(leftIdx, int32(li))
				rightIdx = append(rightIdx, -1)
			}
		}
		if len(leftIdx) == 0 {
			continue
		}
		return joinGather(left, j.rightBatch, leftIdx, rightIdx, j.OutputNames), nil
	}
}

func (j *NestedLoopJoin) Close() error {
	if err := j.Left.Close(); err != nil {
		return err
	}
	return j.Right.Close()
}
