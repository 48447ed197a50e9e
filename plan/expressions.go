package plan

// ExpressionHaver is implemented by plan node kinds that carry one or
// more Scalar fields, so a pass like parameter substitution can rewrite
// them uniformly without a type switch per node kind (spec.md §5.2).
type ExpressionHaver interface {
	Expressions() []Scalar
	WithExpressions(exprs []Scalar) Node
}

func (n *Filter) Expressions() []Scalar { return []Scalar{n.Predicate} }
func (n *Filter) WithExpressions(exprs []Scalar) Node {
	cp := *n
	cp.Predicate = exprs[0]
	return &cp
}

func (n *Map) Expressions() []Scalar { return n.Projections }
func (n *Map) WithExpressions(exprs []Scalar) Node {
	cp := *n
	cp.Projections = exprs
	return &cp
}

func (n *Aggregate) Expressions() []Scalar {
	exprs := append([]Scalar(nil), n.GroupBy...)
	for _, f := range n.Funcs {
		if f.Arg != nil {
			exprs = append(exprs, f.Arg)
		}
	}
	return exprs
}
func (n *Aggregate) WithExpressions(exprs []Scalar) Node {
	cp := *n
	cp.GroupBy = exprs[:len(n.GroupBy)]
	rest := exprs[len(n.GroupBy):]
	newFuncs := make([]AggFunc, len(n.Funcs))
	ri := 0
	for i, f := range n.Funcs {
		newFuncs[i] = f
		if f.Arg != nil {
			newFuncs[i].Arg = rest[ri]
			ri++
		}
	}
	cp.Funcs = newFuncs
	return &cp
}

func (n *Sort) Expressions() []Scalar { return n.Keys }
func (n *Sort) WithExpressions(exprs []Scalar) Node {
	cp := *n
	cp.Keys = exprs
	return &cp
}

func (n *Values) Expressions() []Scalar {
	var out []Scalar
	for _, row := range n.Rows {
		out = append(out, row...)
	}
	return out
}
func (n *Values) WithExpressions(exprs []Scalar) Node {
	cp := *n
	cp.Rows = make([][]Scalar, len(n.Rows))
	i := 0
	for ri, row := range n.Rows {
		cp.Rows[ri] = exprs[i : i+len(row)]
		i += len(row)
	}
	return &cp
}

func (n *IndexScan) Expressions() []Scalar {
	var out []Scalar
	if n.Lo != nil {
		out = append(out, n.Lo)
	}
	if n.Hi != nil {
		out = append(out, n.Hi)
	}
	return out
}
func (n *IndexScan) WithExpressions(exprs []Scalar) Node {
	cp := *n
	i := 0
	if cp.Lo != nil {
		cp.Lo = exprs[i]
		i++
	}
	if cp.Hi != nil {
		cp.Hi = exprs[i]
	}
	return &cp
}

func (n *HashJoin) Expressions() []Scalar {
	exprs := append([]Scalar(nil), n.LeftKeys...)
	exprs = append(exprs, n.RightKeys...)
	if n.Predicate != nil {
		exprs = append(exprs, n.Predicate)
	}
	return exprs
}
func (n *HashJoin) WithExpressions(exprs []Scalar) Node {
	cp := *n
	cp.LeftKeys = exprs[:len(n.LeftKeys)]
	rest := exprs[len(n.LeftKeys):]
	cp.RightKeys = rest[:len(n.RightKeys)]
	rest = rest[len(n.RightKeys):]
	if n.Predicate != nil {
		cp.Predicate = rest[0]
	}
	return &cp
}

func (n *NestedLoopJoin) Expressions() []Scalar {
	if n.Predicate == nil {
		return nil
	}
	return []Scalar{n.Predicate}
}
func (n *NestedLoopJoin) WithExpressions(exprs []Scalar) Node {
	cp := *n
	if len(exprs) > 0 {
		cp.Predicate = exprs[0]
	}
	return &cp
}

func (n *SetVariable) Expressions() []Scalar { return []Scalar{n.Value} }
func (n *SetVariable) WithExpressions(exprs []Scalar) Node {
	cp := *n
	cp.Value = exprs[0]
	return &cp
}
