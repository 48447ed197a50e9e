package exec

import (
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// Map computes Projections against each batch pulled from Input,
// producing Names-labeled output columns (spec.md §4.5).
type Map struct {
	Input       Operator
	Projections []plan.Scalar
	Names       []string
}

func (m *Map) Next() (*kernel.RecordBatch, error) {
	batch, err := m.Input.Next()
	if err != nil {
		return nil, err
	}
	cols := make([]kernel.Array, len(m.Projections))
	for i, p := range m.Projections {
		cols[i] = Eval(p, batch)
	}
	return kernel.NewRecordBatch(m.Names, cols), nil
}

func (m *Map) Close() error { return m.Input.Close() }
