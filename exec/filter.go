package exec

import (
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// Filter pulls batches from Input and keeps only rows where Predicate is
// true (spec.md §4.5), skipping empty batches so downstream operators
// never see a zero-row batch that isn't genuinely end-of-stream.
type Filter struct {
	Input     Operator
	Predicate plan.Scalar
}

func (f *Filter) Next() (*kernel.RecordBatch, error) {
	for {
		batch, err := f.Input.Next()
		if err != nil {
			return nil, err
		}
		mask := Eval(f.Predicate, batch).(*kernel.BoolArray)
		out := batch.Compress(mask)
		if out.Len() == 0 {
			continue
		}
		return out, nil
	}
}

func (f *Filter) Close() error { return f.Input.Close() }
