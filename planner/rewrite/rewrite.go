// Package rewrite implements planner Phase A: logical-to-logical
// rewrites applied until a fixed point (spec.md §4.4), grounded on the
// teacher's optimizer rule-set shape (a small ordered list of
// idempotent, independently-testable functions run repeatedly).
package rewrite

import (
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// Rule is one rewrite pass; it returns NewTree if it changed anything,
// so the driver knows whether another fixed-point round is needed.
type Rule func(n plan.Node) (plan.Node, plan.TreeIdentity, error)

// Rules is the fixed ordered set Phase A applies (spec.md §4.4: combine
// filters/projects, push filter through project, pull filter through
// aggregate, remove no-op/unused CTEs, decorrelate subqueries, rewrite
// AVG to SUM/COUNT).
var Rules = []Rule{
	CombineFilters,
	CombineProjects,
	PushFilterThroughMap,
	PullFilterThroughAggregate,
	RemoveUnusedCTEs,
	DecorrelateScalarSubquery,
	DecorrelateExists,
	RewriteAvg,
}

// Apply runs every rule to a fixed point: repeat the full rule list
// until a pass makes no change, matching the teacher's "run until no
// rule fires" optimizer driver loop.
func Apply(n plan.Node) (plan.Node, error) {
	for {
		changed := false
		for _, rule := range Rules {
			next, identity, err := rule(n)
			if err != nil {
				return nil, err
			}
			if identity == plan.NewTree {
				changed = true
				n = next
			}
		}
		if !changed {
			return n, nil
		}
	}
}

// CombineFilters merges Filter(Filter(x, p1), p2) into Filter(x, p1 AND p2)
// (spec.md §4.4).
func CombineFilters(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		outer, ok := node.(*plan.Filter)
		if !ok {
			return node, plan.SameTree, nil
		}
		inner, ok := outer.Input.(*plan.Filter)
		if !ok {
			return node, plan.SameTree, nil
		}
		combined := &plan.Filter{
			Predicate: &plan.BinaryOp{Op: "AND", Left: inner.Predicate, Right: outer.Predicate, ResultType: outer.Predicate.Type()},
		}
		combined.Input = inner.Input
		return combined, plan.NewTree, nil
	})
}

// CombineProjects merges Map(Map(x, p1), p2) into a single Map, dropping
// the intermediate projection when p2 doesn't reference columns p1 added
// beyond what it directly needs (spec.md §4.4). We conservatively only
// combine when the outer Map's projections are themselves ColumnRefs
// into the inner Map's output (a pure rename/reorder), the common case
// produced by repeated SELECT * wrapping.
func CombineProjects(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		outer, ok := node.(*plan.Map)
		if !ok {
			return node, plan.SameTree, nil
		}
		inner, ok := outer.Input.(*plan.Map)
		if !ok {
			return node, plan.SameTree, nil
		}
		allColumnRefs := true
		for _, p := range outer.Projections {
			if _, ok := p.(*plan.ColumnRef); !ok {
				allColumnRefs = false
				break
			}
		}
		if !allColumnRefs {
			return node, plan.SameTree, nil
		}
		projections := make([]plan.Scalar, len(outer.Projections))
		for i, p := range outer.Projections {
			ref := p.(*plan.ColumnRef)
			found := false
			for j, c := range inner.Schema_ {
				if j < len(inner.Projections) && c.Equal(ref.Column) {
					projections[i], found = inner.Projections[j], true
					break
				}
			}
			if !found {
				return node, plan.SameTree, nil
			}
		}
		combined := &plan.Map{Projections: projections, Schema_: outer.Schema_}
		combined.Input = inner.Input
		return combined, plan.NewTree, nil
	})
}

// PushFilterThroughMap moves Filter(Map(x, proj), pred) to
// Map(Filter(x, pred'), proj) when pred only references columns Map
// passes through unchanged (ColumnRefs), reducing rows before the
// (potentially expensive) projection runs (spec.md §4.4).
func PushFilterThroughMap(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, plan.SameTree, nil
		}
		m, ok := f.Input.(*plan.Map)
		if !ok {
			return node, plan.SameTree, nil
		}
		if !predicateIsPassthrough(f.Predicate, m) {
			return node, plan.SameTree, nil
		}
		pushed := &plan.Filter{Predicate: f.Predicate}
		pushed.Input = m.Input
		outer := &plan.Map{Projections: m.Projections, Schema_: m.Schema_}
		outer.Input = pushed
		return outer, plan.NewTree, nil
	})
}

// predicateIsPassthrough reports whether pred only references output
// columns of m that are themselves bare ColumnRefs (not computed
// expressions), so pushing the filter below m changes nothing semantically.
func predicateIsPassthrough(pred plan.Scalar, m *plan.Map) bool {
	ok := true
	var walk func(s plan.Scalar)
	walk = func(s plan.Scalar) {
		if ref, isRef := s.(*plan.ColumnRef); isRef {
			found := false
			for _, p := range m.Projections {
				if pr, isRef2 := p.(*plan.ColumnRef); isRef2 && pr.Column.Equal(ref.Column) {
					found = true
				}
			}
			if !found {
				ok = false
			}
		}
		for _, c := range s.Children() {
			walk(c)
		}
	}
	walk(pred)
	return ok
}

// PullFilterThroughAggregate moves Aggregate(Filter(x, pred)) no higher
// (filters should run before aggregation, not after), but conversely
// catches the case a HAVING clause was lowered as Filter(Aggregate(x),
// pred) over group-by columns only: such a filter can be pulled below
// the aggregate's grouping stage is NOT valid in general (HAVING may
// reference aggregate results), so this rule only handles the narrow,
// provably-safe case where pred references solely GROUP BY columns,
// letting it run pre-aggregation and shrink the aggregate's input
// (spec.md §4.4).
func PullFilterThroughAggregate(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, plan.SameTree, nil
		}
		agg, ok := f.Input.(*plan.Aggregate)
		if !ok {
			return node, plan.SameTree, nil
		}
		if !referencesOnlyGroupBy(f.Predicate, agg.GroupBy) {
			return node, plan.SameTree, nil
		}
		pushed := &plan.Filter{Predicate: f.Predicate}
		pushed.Input = agg.Input
		newAgg := &plan.Aggregate{GroupBy: agg.GroupBy, Funcs: agg.Funcs, Schema_: agg.Schema_}
		newAgg.Input = pushed
		return newAgg, plan.NewTree, nil
	})
}

func referencesOnlyGroupBy(pred plan.Scalar, groupBy []plan.Scalar) bool {
	ok := true
	var walk func(s plan.Scalar)
	walk = func(s plan.Scalar) {
		if ref, isRef := s.(*plan.ColumnRef); isRef {
			found := false
			for _, g := range groupBy {
				if gr, isRef2 := g.(*plan.ColumnRef); isRef2 && gr.Column.Equal(ref.Column) {
					found = true
				}
			}
			if !found {
				ok = false
			}
		}
		for _, c := range s.Children() {
			walk(c)
		}
	}
	walk(pred)
	return ok
}

// RemoveUnusedCTEs drops every WITH binding no CTERef anywhere in the
// tree names, and unwraps the With node entirely once none remain
// (spec.md §4.4 "remove no-op WITH bindings / unused CTE references",
// §8 scenario 6: `WITH w AS (...) SELECT 2 AS b` drops the unused CTE
// w since nothing references it).
func RemoveUnusedCTEs(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		w, ok := node.(*plan.With)
		if !ok {
			return node, plan.SameTree, nil
		}
		used := map[string]bool{}
		markRefs := func(root plan.Node) {
			plan.Inspect(root, func(inspected plan.Node) bool {
				if ref, ok := inspected.(*plan.CTERef); ok {
					used[ref.Name] = true
				}
				return true
			})
		}
		markRefs(w.Input)
		for _, b := range w.Bindings {
			markRefs(b.Query)
		}
		kept := make([]plan.CTEBinding, 0, len(w.Bindings))
		for _, b := range w.Bindings {
			if used[b.Name] {
				kept = append(kept, b)
			}
		}
		if len(kept) == len(w.Bindings) {
			return node, plan.SameTree, nil
		}
		if len(kept) == 0 {
			return w.Input, plan.NewTree, nil
		}
		return &plan.With{Bindings: kept, Input: w.Input}, plan.NewTree, nil
	})
}

// DecorrelateScalarSubquery rewrites a Map whose Projections contain a
// scalar Subquery into single-join form: the subquery's own plan
// becomes the build side of a NestedLoopJoin against Map.Input, and the
// projection's Subquery scalar is replaced by a ColumnRef to the
// subquery's (sole) output column (spec.md §4.4 "decorrelate correlated
// scalar subqueries into single-join form", §8 scenario 5:
// `SELECT (SELECT 1) FROM (SELECT 1) t`). An uncorrelated subquery (no
// CorrelatedOn pairs) joins with a nil predicate, which exec's
// NestedLoopJoin already treats as an unconditional cross join; a
// correlated one joins on equality between each outer/inner column
// pair. This assumes the subquery always produces exactly one row, the
// common case for a scalar subquery used in a projection.
func DecorrelateScalarSubquery(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		m, ok := node.(*plan.Map)
		if !ok {
			return node, plan.SameTree, nil
		}
		for i, p := range m.Projections {
			sub, ok := p.(*plan.Subquery)
			if !ok {
				continue
			}
			innerSchema := sub.Query.Schema()
			if len(innerSchema) == 0 {
				return node, plan.SameTree, nil
			}
			innerCol := innerSchema[0]
			predicate := correlationPredicate(sub.CorrelatedOn)
			joined := &plan.NestedLoopJoin{
				Type:      plan.InnerJoin,
				Predicate: predicate,
				Schema_:   append(append([]kernel.Column(nil), m.Input.Schema()...), innerSchema...),
			}
			joined.Left, joined.Right = m.Input, sub.Query
			newProjections := append([]plan.Scalar(nil), m.Projections...)
			newProjections[i] = &plan.ColumnRef{Column: innerCol}
			newMap := &plan.Map{Projections: newProjections, Schema_: m.Schema_}
			newMap.Input = joined
			return newMap, plan.NewTree, nil
		}
		return node, plan.SameTree, nil
	})
}

// DecorrelateExists rewrites Filter(x, Exists(subquery)) into a SemiJoin
// (AntiJoin for NOT EXISTS) between x and the subquery's plan, keyed on
// CorrelatedOn's outer/inner column pairs — or, for an uncorrelated
// EXISTS, a zero-key HashJoin, which degenerates to "does the build side
// have any row at all" (spec.md §4.4 "correlated EXISTS into
// semi-join"). Only matches an EXISTS that is the Filter's entire
// predicate; an EXISTS combined with other predicate terms via AND/OR is
// left for a future pass.
func DecorrelateExists(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, plan.SameTree, nil
		}
		ex, ok := f.Predicate.(*plan.Exists)
		if !ok {
			return node, plan.SameTree, nil
		}
		joinType := plan.SemiJoin
		if ex.Negated {
			joinType = plan.AntiJoin
		}
		leftKeys := make([]plan.Scalar, len(ex.CorrelatedOn))
		rightKeys := make([]plan.Scalar, len(ex.CorrelatedOn))
		for i, pair := range ex.CorrelatedOn {
			leftKeys[i] = &plan.ColumnRef{Column: pair.Outer}
			rightKeys[i] = &plan.ColumnRef{Column: pair.Inner}
		}
		joined := &plan.HashJoin{
			Type:      joinType,
			LeftKeys:  leftKeys,
			RightKeys: rightKeys,
			Schema_:   f.Input.Schema(),
		}
		joined.Left, joined.Right = f.Input, ex.Query
		return joined, plan.NewTree, nil
	})
}

func correlationPredicate(pairs []plan.ColumnPair) plan.Scalar {
	var predicate plan.Scalar
	for _, pair := range pairs {
		eq := &plan.BinaryOp{Op: "=", Left: &plan.ColumnRef{Column: pair.Outer}, Right: &plan.ColumnRef{Column: pair.Inner}, ResultType: kernel.Bool}
		if predicate == nil {
			predicate = eq
		} else {
			predicate = &plan.BinaryOp{Op: "AND", Left: predicate, Right: eq, ResultType: kernel.Bool}
		}
	}
	return predicate
}

// RewriteAvg rewrites every AVG(x) aggregate call into SUM(x)/COUNT(x)
// computed by a Map above the Aggregate node: SPEC_FULL.md's decision on
// spec.md's AVG open question is that the executor never evaluates AVG
// directly, since a distributed AVG cannot be combined across workers
// without first separating it into combinable SUM/COUNT parts.
func RewriteAvg(n plan.Node) (plan.Node, plan.TreeIdentity, error) {
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		agg, ok := node.(*plan.Aggregate)
		if !ok {
			return node, plan.SameTree, nil
		}
		hasAvg := false
		for _, f := range agg.Funcs {
			if f.Func == "AVG" {
				hasAvg = true
			}
		}
		if !hasAvg {
			return node, plan.SameTree, nil
		}
		newFuncs := make([]plan.AggFunc, 0, len(agg.Funcs)+1)
		projections := make([]plan.Scalar, 0, len(agg.GroupBy)+len(agg.Funcs))
		for _, g := range agg.GroupBy {
			if ref, ok := g.(*plan.ColumnRef); ok {
				projections = append(projections, &plan.ColumnRef{Column: ref.Column})
			}
		}
		for _, f := range agg.Funcs {
			if f.Func != "AVG" {
				newFuncs = append(newFuncs, f)
				projections = append(projections, &plan.ColumnRef{Column: f.Output})
				continue
			}
			sumCol := f.Output.Fresh()
			countCol := f.Output.Fresh()
			newFuncs = append(newFuncs,
				plan.AggFunc{Func: "SUM", Arg: f.Arg, Output: sumCol},
				plan.AggFunc{Func: "COUNT", Arg: f.Arg, Output: countCol},
			)
			projections = append(projections, &plan.BinaryOp{
				Op:         "/",
				Left:       &plan.ColumnRef{Column: sumCol},
				Right:      &plan.ColumnRef{Column: countCol},
				ResultType: f.Output.Type,
			})
		}
		newAgg := &plan.Aggregate{GroupBy: agg.GroupBy, Funcs: newFuncs}
		newAgg.Input = agg.Input
		newAgg.Schema_ = aggOutputSchema(newAgg)
		m := &plan.Map{Projections: projections, Schema_: agg.Schema_}
		m.Input = newAgg
		return m, plan.NewTree, nil
	})
}

// aggOutputSchema derives an Aggregate's output schema from its group-by
// columns followed by its function outputs, the same order exec.Aggregate
// emits, which worker.Compile relies on when it names the hash aggregate
// operator's output columns.
func aggOutputSchema(agg *plan.Aggregate) []kernel.Column {
	var cols []kernel.Column
	for _, g := range agg.GroupBy {
		if ref, ok := g.(*plan.ColumnRef); ok {
			cols = append(cols, ref.Column)
		}
	}
	for _, f := range agg.Funcs {
		cols = append(cols, f.Output)
	}
	return cols
}
