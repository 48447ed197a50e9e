package worker

import (
	"github.com/google/uuid"

	"github.com/dolthub/zeeql/exec"
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/querystate"
	"gopkg.in/src-d/go-errors.v1"
)

// ErrUnsupportedNode guards Compile against a plan node kind it doesn't
// know how to execute (an internal planner/executor mismatch, since the
// memo phase should only ever emit node kinds this switch covers).
var ErrUnsupportedNode = errors.NewKind("unsupported plan node: %T")

// topicNamespace seeds a deterministic uuid.NewSHA1 mapping from a
// distribute.Stage's plain-string topic name to the 128-bit id
// exchange.Registry keys on, so two workers executing the same
// distributed plan agree on a topic's identity without a side-channel
// lookup (spec.md §5.4).
var topicNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func topicIDFromName(name string) uuid.UUID {
	return uuid.NewSHA1(topicNamespace, []byte(name))
}

// Compile translates a physical plan.Node tree into an exec.Operator
// pipeline rooted at n, resolving TableScan/IndexScan against w.Root
// (spec.md §4.5, §5.3). Exchange, Gather, Broadcast and TableFreeScan
// nodes have no case here: they, like any other kind not listed below,
// return ErrUnsupportedNode, and nothing here reads from w.Exchange.
func Compile(n plan.Node, w *Worker, qs *querystate.State) (exec.Operator, error) {
	switch v := n.(type) {
	case *plan.TableScan:
		t, err := w.Root.Table(v.Table)
		if err != nil {
			return nil, err
		}
		return exec.NewTableScan(t.Heap, qs.Txn), nil
	case *plan.IndexScan:
		t, err := w.Root.Table(v.Table)
		if err != nil {
			return nil, err
		}
		idx, ok := t.Indexes[v.Index]
		if !ok {
			return nil, ErrUnsupportedNode.New(v)
		}
		var lo, hi []byte
		equal := v.Lo != nil && v.Hi != nil && sameScalar(v.Lo, v.Hi)
		if v.Lo != nil {
			lo = literalBytes(v.Lo)
		}
		if v.Hi != nil {
			hi = literalBytes(v.Hi)
		}
		return &exec.IndexScan{Heap: t.Heap, Tree: idx.Tree, Lo: lo, Hi: hi, Equal: equal, Txn: qs.Txn}, nil
	case *plan.Values:
		return &exec.Values{Batch: materializeValues(v)}, nil
	case *plan.Filter:
		input, err := Compile(v.Input, w, qs)
		if err != nil {
			return nil, err
		}
		return &exec.Filter{Input: input, Predicate: v.Predicate}, nil
	case *plan.Map:
		input, err := Compile(v.Input, w, qs)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(v.Schema_))
		for i, c := range v.Schema_ {
			names[i] = c.Name
		}
		return &exec.Map{Input: input, Projections: v.Projections, Names: names}, nil
	case *plan.Aggregate:
		input, err := Compile(v.Input, w, qs)
		if err != nil {
			return nil, err
		}
		groupNames := make([]string, 0, len(v.GroupBy))
		for _, g := range v.GroupBy {
			if ref, ok := g.(*plan.ColumnRef); ok {
				groupNames = append(groupNames, ref.Column.Name)
			}
		}
		outNames := make([]string, len(v.Schema_))
		for i, c := range v.Schema_ {
			outNames[i] = c.Name
		}
		return &exec.Aggregate{Input: input, GroupByCols: groupNames, Funcs: v.Funcs, OutputNames: outNames}, nil
	case *plan.Sort:
		input, err := Compile(v.Input, w, qs)
		if err != nil {
			return nil, err
		}
		return &exec.Sort{Input: input, Keys: v.Keys, Descending: v.Descending, NullsFirst: v.NullsFirst}, nil
	case *plan.Limit:
		input, err := Compile(v.Input, w, qs)
		if err != nil {
			return nil, err
		}
		return &exec.Limit{Input: input, Count: v.Count}, nil
	case *plan.Union:
		ops := make([]exec.Operator, len(v.Inputs))
		for i, in := range v.Inputs {
			op, err := Compile(in, w, qs)
			if err != nil {
				return nil, err
			}
			ops[i] = op
		}
		return &exec.Union{Inputs: ops}, nil
	case *plan.HashJoin:
		left, err := Compile(v.Left, w, qs)
		if err != nil {
			return nil, err
		}
		right, err := Compile(v.Right, w, qs)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(v.Schema_))
		for i, c := range v.Schema_ {
			names[i] = c.Name
		}
		return &exec.HashJoin{Left: left, Right: right, LeftKeys: v.LeftKeys, RightKeys: v.RightKeys, Predicate: v.Predicate, Type: v.Type, OutputNames: names}, nil
	case *plan.NestedLoopJoin:
		left, err := Compile(v.Left, w, qs)
		if err != nil {
			return nil, err
		}
		right, err := Compile(v.Right, w, qs)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(v.Schema_))
		for i, c := range v.Schema_ {
			names[i] = c.Name
		}
		return &exec.NestedLoopJoin{Left: left, Right: right, Predicate: v.Predicate, Type: v.Type, OutputNames: names}, nil
	case *plan.Out:
		return Compile(v.Input, w, qs)
	default:
		return nil, ErrUnsupportedNode.New(n)
	}
}

func sameScalar(a, b plan.Scalar) bool {
	al, aok := a.(*plan.Literal)
	bl, bok := b.(*plan.Literal)
	return aok && bok && al.Value == bl.Value
}

func literalBytes(s plan.Scalar) []byte {
	lit, ok := s.(*plan.Literal)
	if !ok {
		return nil
	}
	switch v := lit.Value.(type) {
	case int64:
		return kernel.EncodeI64(v)
	case float64:
		return kernel.EncodeF64(v)
	case string:
		return kernel.EncodeString(v)
	case bool:
		return kernel.EncodeBool(v)
	default:
		return nil
	}
}

func materializeValues(v *plan.Values) *kernel.RecordBatch {
	names := make([]string, len(v.Schema_))
	builders := make([]kernel.Array, len(v.Schema_))
	for i, c := range v.Schema_ {
		names[i] = c.Name
		builders[i] = kernel.NewBuilder(c.Type, len(v.Rows))
	}
	for _, row := range v.Rows {
		for ci, scalar := range row {
			lit, ok := scalar.(*plan.Literal)
			if !ok {
				continue
			}
			appendLiteral(builders[ci], lit)
		}
	}
	return kernel.NewRecordBatch(names, builders)
}

func appendLiteral(dst kernel.Array, lit *plan.Literal) {
	switch d := dst.(type) {
	case *kernel.I64Array:
		v, ok := lit.Value.(int64)
		d.AppendValue(v, ok)
	case *kernel.F64Array:
		v, ok := lit.Value.(float64)
		d.AppendValue(v, ok)
	case *kernel.BoolArray:
		v, ok := lit.Value.(bool)
		d.AppendValue(v, ok)
	case *kernel.StringArray:
		v, ok := lit.Value.(string)
		d.AppendValue(v, ok)
	}
}
