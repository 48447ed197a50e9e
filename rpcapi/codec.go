package rpcapi

import (
	"bytes"
	"encoding/gob"

	"github.com/dolthub/zeeql/kernel"
)

// wireColumn is BatchPayload's one-column-per-entry wire encoding: a
// gob-encoded struct carrying the column's type, its validity bitmap (as a
// plain []bool, simpler to gob than kernel.Bitmask's packed bytes), and
// whichever typed slice matches Type. This is deliberately the simplest
// encoding that actually round-trips real data, not a placeholder — the
// wire format itself is still the transport layer's concern (spec.md §1's
// "transport is a black box" Non-goal), but the column data this package's
// own callers produce and consume must survive the round trip.
type wireColumn struct {
	Type  kernel.DataType
	Valid []bool
	I64   []int64
	F64   []float64
	Bool  []bool
	Str   []string
	Date  []int32
	Ts    []int64
}

// EncodeBatch converts b into a BatchPayload, one gob-encoded wireColumn
// per column in b.Names order.
func EncodeBatch(b *kernel.RecordBatch) BatchPayload {
	cols := make([][]byte, len(b.Names))
	for i, col := range b.Columns {
		cols[i] = encodeColumn(col)
	}
	return BatchPayload{Names: append([]string(nil), b.Names...), Columns: cols}
}

// DecodeBatch is EncodeBatch's inverse.
func DecodeBatch(p BatchPayload) (*kernel.RecordBatch, error) {
	cols := make([]kernel.Array, len(p.Columns))
	for i, raw := range p.Columns {
		col, err := decodeColumn(raw)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return kernel.NewRecordBatch(p.Names, cols), nil
}

func encodeColumn(arr kernel.Array) []byte {
	n := arr.Len()
	wc := wireColumn{Type: arr.Type(), Valid: make([]bool, n)}
	for i := 0; i < n; i++ {
		wc.Valid[i] = arr.IsValid(i)
	}
	switch a := arr.(type) {
	case *kernel.I64Array:
		wc.I64 = make([]int64, n)
		for i := 0; i < n; i++ {
			wc.I64[i], _ = a.Get(i)
		}
	case *kernel.F64Array:
		wc.F64 = make([]float64, n)
		for i := 0; i < n; i++ {
			wc.F64[i], _ = a.Get(i)
		}
	case *kernel.BoolArray:
		wc.Bool = make([]bool, n)
		for i := 0; i < n; i++ {
			wc.Bool[i], _ = a.Get(i)
		}
	case *kernel.StringArray:
		wc.Str = make([]string, n)
		for i := 0; i < n; i++ {
			wc.Str[i], _ = a.Get(i)
		}
	case *kernel.DateArray:
		wc.Date = make([]int32, n)
		for i := 0; i < n; i++ {
			wc.Date[i], _ = a.Get(i)
		}
	case *kernel.TimestampArray:
		wc.Ts = make([]int64, n)
		for i := 0; i < n; i++ {
			wc.Ts[i], _ = a.Get(i)
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wc); err != nil {
		panic(err) // an in-memory struct of plain slices never fails to gob-encode
	}
	return buf.Bytes()
}

func decodeColumn(raw []byte) (kernel.Array, error) {
	var wc wireColumn
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&wc); err != nil {
		return nil, ErrBadColumnEncoding.New(err)
	}
	valid := kernel.Falses(len(wc.Valid))
	for i, v := range wc.Valid {
		valid.Set(i, v)
	}
	switch wc.Type {
	case kernel.Int64:
		return kernel.NewI64Array(wc.I64, valid), nil
	case kernel.Float64:
		return kernel.NewF64Array(wc.F64, valid), nil
	case kernel.Bool:
		return kernel.NewBoolArray(wc.Bool, valid), nil
	case kernel.String:
		return kernel.NewStringArray(wc.Str, valid), nil
	case kernel.Date:
		return kernel.NewDateArray(wc.Date, valid), nil
	case kernel.Timestamp:
		return kernel.NewTimestampArray(wc.Ts, valid), nil
	default:
		return nil, ErrBadColumnEncoding.New("unknown type")
	}
}
