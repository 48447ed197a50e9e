package exec

import (
	"io"

	"github.com/dolthub/zeeql/kernel"
)

// Limit passes through at most Count total rows across every batch it
// returns, truncating the final batch and then reporting EOF on every
// subsequent call (spec.md §4.5).
type Limit struct {
	Input   Operator
	Count   int64
	emitted int64
}

func (l *Limit) Next() (*kernel.RecordBatch, error) {
	if l.emitted >= l.Count {
		return nil, io.EOF
	}
	batch, err := l.Input.Next()
	if err != nil {
		return nil, err
	}
	remaining := l.Count - l.emitted
	if int64(batch.Len()) <= remaining {
		l.emitted += int64(batch.Len())
		return batch, nil
	}
	idx := make([]int32, remaining)
	for i := range idx {
		idx[i] = int32(i)
	}
	l.emitted = l.Count
	return batch.Gather(idx), nil
}

func (l *Limit) Close() error { return l.Input.Close() }
