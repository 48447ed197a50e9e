package exec

import (
	"io"

	"github.com/dolthub/zeeql/kernel"
)

// Union pulls from each Input in order, exhausting one before moving to
// the next (spec.md §4.5 set operations).
type Union struct {
	Inputs []Operator
	idx    int
}

func (u *Union) Next() (*kernel.RecordBatch, error) {
	for u.idx < len(u.Inputs) {
		batch, err := u.Inputs[u.idx].Next()
		if err == io.EOF {
			u.idx++
			continue
		}
		if err != nil {
			return nil, err
		}
		return batch, nil
	}
	return nil, io.EOF
}

func (u *Union) Close() error {
	var first error
	for _, in := range u.Inputs {
		if err := in.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
