// Package hashtable implements the dense bucketed hash table shared by
// hash-join and hash-aggregate operators (spec.md §4.2), grounded on
// zeedb:execute/hash_table.rs.
package hashtable

import "github.com/dolthub/zeeql/kernel"

// HashTable buckets row indexes by hash(key columns) mod numBuckets:
// build scans every row once computing its bucket and appends the row
// index to that bucket's own slice. The build side is not reordered into
// one bucket-sorted array and there are no prefix-summed bucket offsets;
// each bucket is a separate []int32. Probe returns a whole bucket, and
// the caller is responsible for re-checking key equality on those rows
// (a hash collision does not imply key equality).
type HashTable struct {
	numBuckets int
	buckets    [][]int32 // bucket -> build-side row indexes
	build      *kernel.RecordBatch
	keyNames   []string
}

// Build scans batch once, bucketing every row by hash(keyNames).
func Build(batch *kernel.RecordBatch, keyNames []string, numBuckets int) *HashTable {
	if numBuckets <= 0 {
		numBuckets = 1
	}
	ht := &HashTable{
		numBuckets: numBuckets,
		buckets:    make([][]int32, numBuckets),
		build:      batch,
		keyNames:   keyNames,
	}
	hashes := batch.Hash(keyNames...)
	for row, h := range hashes {
		b := int(h % uint64(numBuckets))
		ht.buckets[b] = append(ht.buckets[b], int32(row))
	}
	return ht
}

// Probe returns the build-side row indexes in the same bucket as a probe
// row with the given hash; the caller must still compare key columns
// row-by-row to rule out collisions (spec.md §4.2 step 6).
func (ht *HashTable) Probe(hash uint64) []int32 {
	return ht.buckets[hash%uint64(ht.numBuckets)]
}

// BuildBatch returns the underlying build-side batch, for the caller to
// gather matched rows out of.
func (ht *HashTable) BuildBatch() *kernel.RecordBatch { return ht.build }

// KeysEqual compares the build-side row at buildRow against the probe
// batch's row at probeRow across keyNames, returning false (not a match)
// if either side is null in any key column (spec.md §8: null never
// equals null in join/group keys).
func KeysEqual(build *kernel.RecordBatch, buildRow int, probe *kernel.RecordBatch, probeRow int, buildNames, probeNames []string) bool {
	for i := range buildNames {
		bc, ok := build.Column(buildNames[i])
		if !ok {
			return false
		}
		pc, ok := probe.Column(probeNames[i])
		if !ok {
			return false
		}
		if !valueEqual(bc, buildRow, pc, probeRow) {
			return false
		}
	}
	return true
}

func valueEqual(a kernel.Array, ai int, b kernel.Array, bi int) bool {
	switch av := a.(type) {
	case *kernel.I64Array:
		bv, ok := b.(*kernel.I64Array)
		if !ok {
			return false
		}
		x, xok := av.Get(ai)
		y, yok := bv.Get(bi)
		return xok && yok && x == y
	case *kernel.F64Array:
		bv, ok := b.(*kernel.F64Array)
		if !ok {
			return false
		}
		x, xok := av.Get(ai)
		y, yok := bv.Get(bi)
		return xok && yok && x == y
	case *kernel.StringArray:
		bv, ok := b.(*kernel.StringArray)
		if !ok {
			return false
		}
		x, xok := av.Get(ai)
		y, yok := bv.Get(bi)
		return xok && yok && x == y
	case *kernel.BoolArray:
		bv, ok := b.(*kernel.BoolArray)
		if !ok {
			return false
		}
		x, xok := av.Get(ai)
		y, yok := bv.Get(bi)
		return xok && yok && x == y
	case *kernel.DateArray:
		bv, ok := b.(*kernel.DateArray)
		if !ok {
			return false
		}
		x, xok := av.Get(ai)
		y, yok := bv.Get(bi)
		return xok && yok && x == y
	case *kernel.TimestampArray:
		bv, ok := b.(*kernel.TimestampArray)
		if !ok {
			return false
		}
		x, xok := av.Get(ai)
		y, yok := bv.Get(bi)
		return xok && yok && x == y
	default:
		return false
	}
}

// NumBuckets reports the table's bucket count, exposed so aggregate
// operators can size their own per-bucket accumulator arrays to match.
func (ht *HashTable) NumBuckets() int { return ht.numBuckets }

// KeyNames reports the build-side column names the table was built on,
// so a prober can pair them up against its own (possibly differently
// named) probe-side key columns.
func (ht *HashTable) KeyNames() []string { return ht.keyNames }
