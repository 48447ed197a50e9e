package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullPropagationArithmetic(t *testing.T) {
	valid := NewBitmaskCapacity(3)
	valid.Push(true)
	valid.Push(false)
	valid.Push(true)
	a := NewI64Array([]int64{1, 2, 3}, valid)
	b := NewI64Array([]int64{10, 20, 30}, Trues(3))

	sum := AddI64(a, b)
	v, ok := sum.Get(0)
	require.True(t, ok)
	require.Equal(t, int64(11), v)

	_, ok = sum.Get(1)
	require.False(t, ok, "null operand must propagate to a null result")
}

func TestNullPropagationComparison(t *testing.T) {
	valid := NewBitmaskCapacity(2)
	valid.Push(true)
	valid.Push(false)
	a := NewI64Array([]int64{1, 2}, valid)
	b := NewI64Array([]int64{1, 2}, Trues(2))

	eq := CompareI64(a, b, func(x, y int64) bool { return x == y })
	v, ok := eq.Get(0)
	require.True(t, ok)
	require.True(t, v)
	_, ok = eq.Get(1)
	require.False(t, ok)
}

func TestGatherScatterRoundTrip(t *testing.T) {
	src := NewI64Array([]int64{10, 20, 30, 40}, Trues(4))
	idx := []int32{3, 1, 0, 2}

	gathered := src.Gather(idx)
	into := NewI64Array(make([]int64, 4), Trues(4))
	scattered := gathered.Scatter(idx, into)

	for i := 0; i < 4; i++ {
		want, _ := src.Get(i)
		got, _ := scattered.(*I64Array).Get(i)
		require.Equal(t, want, got, "scatter(gather(x, idx), idx, into) == x for duplicate-free idx")
	}
}

func TestHashStability(t *testing.T) {
	a := NewRecordBatch([]string{"x", "y"}, []Array{
		NewI64Array([]int64{1, 2, 1}, Trues(3)),
		NewStringArray([]string{"a", "b", "a"}, Trues(3)),
	})
	hashes := a.Hash("x", "y")
	require.Equal(t, hashes[0], hashes[2], "equal rows over the same columns must hash equal")
	require.NotEqual(t, hashes[0], hashes[1])
}

func TestByteKeyOrderInt64(t *testing.T) {
	examples := [][]byte{
		EncodeI64(-1 << 62),
		EncodeI64(-2),
		EncodeI64(-1),
		EncodeI64(0),
		EncodeI64(1),
		EncodeI64(2),
		EncodeI64(1 << 62),
	}
	assertOrdered(t, examples)
}

func TestByteKeyOrderFloat64(t *testing.T) {
	neg := func(bits uint64) float64 {
		return -float64FromBits(bits)
	}
	examples := [][]byte{
		EncodeF64(negInf()),
		EncodeF64(-1.7976931348623157e+308), // math.MaxFloat64 negated
		EncodeF64(-1),
		EncodeF64(neg(2)),
		EncodeF64(neg(1)),
		EncodeF64(negZero()),
		EncodeF64(0),
		EncodeF64(float64FromBits(1)),
		EncodeF64(float64FromBits(2)),
		EncodeF64(1),
		EncodeF64(1.7976931348623157e+308),
		EncodeF64(posInf()),
	}
	assertOrdered(t, examples)
}

func TestVarintRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 1 << 40, -(1 << 40), 1<<63 - 1, -(1 << 63)}
	for _, v := range values {
		buf := Varint(v)
		require.LessOrEqual(t, len(buf), MaxVarintLen)
		got, n := GetVarint(buf)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func assertOrdered(t *testing.T, examples [][]byte) {
	t.Helper()
	for i := range examples {
		for j := range examples {
			switch {
			case i < j:
				require.True(t, lessBytes(examples[i], examples[j]), "example %d should sort before %d", i, j)
			case j < i:
				require.True(t, lessBytes(examples[j], examples[i]), "example %d should sort before %d", j, i)
			}
		}
	}
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
