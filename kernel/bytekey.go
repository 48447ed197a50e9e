package kernel

import (
	"encoding/binary"
	"math"
)

// Byte-key encoding (spec.md §6): order-preserving byte representations
// used by the ART secondary index. Each Encode* function's output is
// lexicographically ordered the same as the source value's natural order
// (floats use the codec's total order, where NaN is maximal).

// EncodeBool encodes a BOOL as a single 0x00/0x01 byte.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// EncodeI64 flips the sign bit so two's-complement ordering becomes
// unsigned big-endian ordering (zeedb:storage/byte_key_tests.rs).
func EncodeI64(v int64) []byte {
	u := uint64(v) ^ (uint64(1) << 63)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, u)
	return buf
}

// EncodeI32 is EncodeI64's 32-bit counterpart, used for DATE values
// (days since the epoch).
func EncodeI32(v int32) []byte {
	u := uint32(v) ^ (uint32(1) << 31)
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, u)
	return buf
}

// EncodeF64 implements the total order from spec.md §6: if the sign bit is
// set, XOR all bits (so more-negative sorts before less-negative); else
// flip just the sign bit (so positives sort after all negatives). A NaN
// with its sign bit clear sorts above +Inf and one with its sign bit set
// sorts below -Inf, matching zeedb:storage/byte_key_tests.rs exactly.
func EncodeF64(v float64) []byte {
	bits := math.Float64bits(v)
	if bits&(uint64(1)<<63) != 0 {
		bits = ^bits
	} else {
		bits ^= uint64(1) << 63
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf
}

// EncodeString encodes a STRING as its UTF-8 bytes terminated by a zero
// byte, so a composite key concatenation remains unambiguous and ordered
// (spec.md §6: "terminated by a zero byte before the next column"). The
// value itself must not contain an embedded NUL; the storage layer never
// constructs STRING values from untrusted binary data.
func EncodeString(v string) []byte {
	buf := make([]byte, len(v)+1)
	copy(buf, v)
	buf[len(v)] = 0
	return buf
}

// EncodeTID appends the big-endian 8-byte tuple id, the trailing
// component of every composite index key (spec.md §6).
func EncodeTID(tid int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(tid))
	return buf
}

// CompositeKey concatenates column-encoded parts followed by the tid
// encoding, in order, forming the ART index key for one row.
func CompositeKey(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
