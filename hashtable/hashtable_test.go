package hashtable

import (
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/stretchr/testify/require"
)

func batchOf(keys []int64) *kernel.RecordBatch {
	return kernel.NewRecordBatch([]string{"k"}, []kernel.Array{kernel.NewI64Array(keys, kernel.Trues(len(keys)))})
}

func TestBuildProbeFindsMatchingKey(t *testing.T) {
	build := batchOf([]int64{1, 2, 3, 4, 5})
	ht := Build(build, []string{"k"}, 4)

	probe := batchOf([]int64{3})
	hashes := probe.Hash("k")
	candidates := ht.Probe(hashes[0])

	found := false
	for _, row := range candidates {
		if KeysEqual(build, int(row), probe, 0, []string{"k"}, []string{"k"}) {
			found = true
		}
	}
	require.True(t, found)
}

func TestProbeMissingKeyFindsNoMatch(t *testing.T) {
	build := batchOf([]int64{1, 2, 3})
	ht := Build(build, []string{"k"}, 4)

	probe := batchOf([]int64{99})
	hashes := probe.Hash("k")
	candidates := ht.Probe(hashes[0])

	for _, row := range candidates {
		require.False(t, KeysEqual(build, int(row), probe, 0, []string{"k"}, []string{"k"}))
	}
}

func TestNullKeyNeverMatches(t *testing.T) {
	build := kernel.NewRecordBatch([]string{"k"}, []kernel.Array{kernel.NewI64Array([]int64{0}, kernel.Falses(1))})
	probe := kernel.NewRecordBatch([]string{"k"}, []kernel.Array{kernel.NewI64Array([]int64{0}, kernel.Falses(1))})
	require.False(t, KeysEqual(build, 0, probe, 0, []string{"k"}, []string{"k"}))
}
