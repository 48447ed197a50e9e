package stats

import "sort"

// Histogram is an equi-depth histogram over a column's sorted byte-key
// encodings: boundaries splits the observed keys into len(boundaries)+1
// buckets of roughly equal row count, used by the planner to estimate the
// selectivity of range predicates (spec.md §3, §4.4).
type Histogram struct {
	boundaries [][]byte
	rows       int64
}

// BuildHistogram constructs an equi-depth histogram with at most
// numBuckets buckets from a (possibly unsorted, possibly with duplicates)
// set of byte-key-encoded values.
func BuildHistogram(keys [][]byte, numBuckets int) *Histogram {
	if len(keys) == 0 || numBuckets <= 0 {
		return &Histogram{rows: int64(len(keys))}
	}
	sorted := append([][]byte(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return lessBytes(sorted[i], sorted[j]) })

	if numBuckets > len(sorted) {
		numBuckets = len(sorted)
	}
	boundaries := make([][]byte, 0, numBuckets-1)
	bucketSize := len(sorted) / numBuckets
	for b := 1; b < numBuckets; b++ {
		boundaries = append(boundaries, sorted[b*bucketSize])
	}
	return &Histogram{boundaries: boundaries, rows: int64(len(keys))}
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Selectivity estimates the fraction of rows satisfying lo <= key <= hi
// (either bound may be nil for an open range) by counting how many
// buckets the range spans.
func (h *Histogram) Selectivity(lo, hi []byte) float64 {
	if h.rows == 0 {
		return 0
	}
	numBuckets := len(h.boundaries) + 1
	loIdx := 0
	if lo != nil {
		loIdx = sort.Search(len(h.boundaries), func(i int) bool { return !lessBytes(h.boundaries[i], lo) })
	}
	hiIdx := numBuckets - 1
	if hi != nil {
		hiIdx = sort.Search(len(h.boundaries), func(i int) bool { return lessBytes(hi, h.boundaries[i]) })
	}
	if hiIdx < loIdx {
		return 0
	}
	spanned := float64(hiIdx-loIdx+1) / float64(numBuckets)
	if spanned > 1 {
		spanned = 1
	}
	return spanned
}

// Merge concatenates other's boundaries in with this histogram's and
// rebalances to the same bucket count, an additive cross-worker merge
// (spec.md §3 "mergeable across workers").
func (h *Histogram) Merge(other *Histogram) *Histogram {
	numBuckets := len(h.boundaries) + 1
	if len(other.boundaries)+1 > numBuckets {
		numBuckets = len(other.boundaries) + 1
	}
	all := append(append([][]byte(nil), h.boundaries...), other.boundaries...)
	sort.Slice(all, func(i, j int) bool { return lessBytes(all[i], all[j]) })
	merged := BuildHistogram(all, numBuckets)
	merged.rows = h.rows + other.rows
	return merged
}

func (h *Histogram) Rows() int64 { return h.rows }

// Boundaries exposes the bucket boundaries for a transport boundary to
// carry across a worker/coordinator RPC (spec.md §3 "mergeable across
// workers").
func (h *Histogram) Boundaries() [][]byte { return h.boundaries }

// NewHistogramFromParts rebuilds a histogram from Boundaries/Rows'
// output, for the coordinator side of a stats RPC.
func NewHistogramFromParts(boundaries [][]byte, rows int64) *Histogram {
	return &Histogram{boundaries: boundaries, rows: rows}
}
