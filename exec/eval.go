package exec

import (
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// Eval evaluates a scalar expression over every row of batch, returning
// the resulting kernel.Array (spec.md §4.1, §4.5). Only the operators
// kernel itself exposes are supported; anything else is an internal
// planner bug, so we panic rather than thread an error through every
// call site (matches the teacher's sql.Expression.Eval contract, which
// also panics on internally-inconsistent type combinations).
func Eval(s plan.Scalar, batch *kernel.RecordBatch) kernel.Array {
	switch v := s.(type) {
	case *plan.Literal:
		return literalArray(v, batch.Len())
	case *plan.ColumnRef:
		col, ok := batch.Column(v.Column.Name)
		if !ok {
			panic(plan.ErrChildCount.New(1, 0))
		}
		return col
	case *plan.BinaryOp:
		left := Eval(v.Left, batch)
		right := Eval(v.Right, batch)
		return evalBinary(v.Op, left, right)
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}

func literalArray(l *plan.Literal, n int) kernel.Array {
	valid := kernel.Trues(n)
	switch l.Typ {
	case kernel.Bool:
		data := make([]bool, n)
		if v, ok := l.Value.(bool); ok {
			for i := range data {
				data[i] = v
			}
		}
		return kernel.NewBoolArray(data, valid)
	case kernel.Int64:
		data := make([]int64, n)
		if v, ok := l.Value.(int64); ok {
			for i := range data {
				data[i] = v
			}
		}
		return kernel.NewI64Array(data, valid)
	case kernel.Float64:
		data := make([]float64, n)
		if v, ok := l.Value.(float64); ok {
			for i := range data {
				data[i] = v
			}
		}
		return kernel.NewF64Array(data, valid)
	case kernel.String:
		data := make([]string, n)
		if v, ok := l.Value.(string); ok {
			for i := range data {
				data[i] = v
			}
		}
		return kernel.NewStringArray(data, valid)
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}

func evalBinary(op string, left, right kernel.Array) kernel.Array {
	switch l := left.(type) {
	case *kernel.I64Array:
		r := right.(*kernel.I64Array)
		return evalI64(op, l, r)
	case *kernel.F64Array:
		r := right.(*kernel.F64Array)
		return evalF64(op, l, r)
	case *kernel.StringArray:
		r := right.(*kernel.StringArray)
		return evalString(op, l, r)
	case *kernel.BoolArray:
		r := right.(*kernel.BoolArray)
		return evalBool(op, l, r)
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}

func evalI64(op string, l, r *kernel.I64Array) kernel.Array {
	switch op {
	case "+":
		return kernel.AddI64(l, r)
	case "-":
		return kernel.SubI64(l, r)
	case "*":
		return kernel.MulI64(l, r)
	case "/":
		out, err := kernel.DivI64(l, r)
		if err != nil {
			panic(err)
		}
		return out
	case "=":
		return kernel.CompareI64(l, r, func(a, b int64) bool { return a == b })
	case "<":
		return kernel.CompareI64(l, r, func(a, b int64) bool { return a < b })
	case "<=":
		return kernel.CompareI64(l, r, func(a, b int64) bool { return a <= b })
	case ">":
		return kernel.CompareI64(l, r, func(a, b int64) bool { return a > b })
	case ">=":
		return kernel.CompareI64(l, r, func(a, b int64) bool { return a >= b })
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}

func evalF64(op string, l, r *kernel.F64Array) kernel.Array {
	switch op {
	case "+":
		return kernel.AddF64(l, r)
	case "-":
		return kernel.SubF64(l, r)
	case "*":
		return kernel.MulF64(l, r)
	case "/":
		out, err := kernel.DivF64(l, r)
		if err != nil {
			panic(err)
		}
		return out
	case "=":
		return kernel.CompareF64(l, r, func(a, b float64) bool { return a == b })
	case "<":
		return kernel.CompareF64(l, r, func(a, b float64) bool { return a < b })
	case "<=":
		return kernel.CompareF64(l, r, func(a, b float64) bool { return a <= b })
	case ">":
		return kernel.CompareF64(l, r, func(a, b float64) bool { return a > b })
	case ">=":
		return kernel.CompareF64(l, r, func(a, b float64) bool { return a >= b })
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}

func evalString(op string, l, r *kernel.StringArray) kernel.Array {
	switch op {
	case "=":
		return kernel.CompareString(l, r, func(a, b string) bool { return a == b })
	case "<":
		return kernel.CompareString(l, r, func(a, b string) bool { return a < b })
	case "<=":
		return kernel.CompareString(l, r, func(a, b string) bool { return a <= b })
	case ">":
		return kernel.CompareString(l, r, func(a, b string) bool { return a > b })
	case ">=":
		return kernel.CompareString(l, r, func(a, b string) bool { return a >= b })
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}

func evalBool(op string, l, r *kernel.BoolArray) kernel.Array {
	switch op {
	case "AND":
		return kernel.And(l, r)
	case "OR":
		return kernel.Or(l, r)
	default:
		panic(plan.ErrChildCount.New(0, 0))
	}
}
