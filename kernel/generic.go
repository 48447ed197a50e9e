package kernel

// gatherData, compressData and scatterData implement the data-plane half
// of gather/compress/scatter for any primitive slice type; each concrete
// array wraps these with its own validity-bitmap handling.
func gatherData[T any](data []T, idx []int32) []T {
	out := make([]T, len(idx))
	var zero T
	for i, j := range idx {
		if j < 0 {
			out[i] = zero
			continue
		}
		if int(j) >= len(data) {
			panic(ErrIndexOutOfRange.New(j, len(data)))
		}
		out[i] = data[j]
	}
	return out
}

func compressData[T any](data []T, mask *BoolArray) []T {
	if mask.Len() != len(data) {
		panic(ErrLengthMismatch.New(mask.Len(), len(data)))
	}
	out := make([]T, 0, len(data))
	for i, v := range data {
		if mask.IsValid(i) && mask.data[i] {
			out = append(out, v)
		}
	}
	return out
}

func scatterData[T any](data []T, idx []int32, into []T) []T {
	if len(idx) != len(data) {
		panic(ErrLengthMismatch.New(len(idx), len(data)))
	}
	out := make([]T, len(into))
	copy(out, into)
	for i, j := range idx {
		out[j] = data[i]
	}
	return out
}
