package rewrite

import (
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/stretchr/testify/require"
)

func TestCombineFiltersMergesIntoOne(t *testing.T) {
	scan := &plan.TableScan{Table: "t"}
	f1 := &plan.Filter{Predicate: &plan.Literal{Value: true, Typ: kernel.Bool}}
	f1.Input = scan
	f2 := &plan.Filter{Predicate: &plan.Literal{Value: false, Typ: kernel.Bool}}
	f2.Input = f1

	got, identity, err := CombineFilters(f2)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	merged, ok := got.(*plan.Filter)
	require.True(t, ok)
	require.IsType(t, &plan.BinaryOp{}, merged.Predicate)
	require.Equal(t, scan, merged.Input)
}

func TestRewriteAvgSplitsIntoSumOverCount(t *testing.T) {
	col := kernel.Column{ID: 1, Name: "x", Type: kernel.Int64}
	out := kernel.Column{ID: 2, Name: "avg_x", Type: kernel.Float64}
	agg := &plan.Aggregate{
		Funcs: []plan.AggFunc{{Func: "AVG", Arg: &plan.ColumnRef{Column: col}, Output: out}},
	}
	agg.Input = &plan.TableScan{Table: "t"}

	got, identity, err := RewriteAvg(agg)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	m, ok := got.(*plan.Map)
	require.True(t, ok)
	require.IsType(t, &plan.BinaryOp{}, m.Projections[0])
	innerAgg, ok := m.Input.(*plan.Aggregate)
	require.True(t, ok)
	require.Len(t, innerAgg.Funcs, 2)
	require.Equal(t, "SUM", innerAgg.Funcs[0].Func)
	require.Equal(t, "COUNT", innerAgg.Funcs[1].Func)
}

func TestRemoveUnusedCTEsDropsUnreferencedBinding(t *testing.T) {
	// WITH w AS (SELECT 1) SELECT 2 AS b -- w is bound but never read.
	one := kernel.Column{ID: 1, Name: "one", Type: kernel.Int64}
	wQuery := &plan.Map{Projections: []plan.Scalar{&plan.Literal{Value: int64(1), Typ: kernel.Int64}}, Schema_: []kernel.Column{one}}
	wQuery.Input = &plan.TableFreeScan{}

	b := kernel.Column{ID: 2, Name: "b", Type: kernel.Int64}
	body := &plan.Map{Projections: []plan.Scalar{&plan.Literal{Value: int64(2), Typ: kernel.Int64}}, Schema_: []kernel.Column{b}}
	body.Input = &plan.TableFreeScan{}

	with := &plan.With{Bindings: []plan.CTEBinding{{Name: "w", Query: wQuery}}, Input: body}

	got, identity, err := RemoveUnusedCTEs(with)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	require.Same(t, plan.Node(body), got)
}

func TestRemoveUnusedCTEsKeepsReferencedBinding(t *testing.T) {
	one := kernel.Column{ID: 1, Name: "one", Type: kernel.Int64}
	wQuery := &plan.Map{Projections: []plan.Scalar{&plan.Literal{Value: int64(1), Typ: kernel.Int64}}, Schema_: []kernel.Column{one}}
	wQuery.Input = &plan.TableFreeScan{}

	body := &plan.CTERef{Name: "w", Schema_: []kernel.Column{one}}
	with := &plan.With{Bindings: []plan.CTEBinding{{Name: "w", Query: wQuery}}, Input: body}

	got, identity, err := RemoveUnusedCTEs(with)
	require.NoError(t, err)
	require.Equal(t, plan.SameTree, identity)
	require.Same(t, plan.Node(with), got)
}

func TestDecorrelateScalarSubqueryBuildsCrossJoin(t *testing.T) {
	// SELECT (SELECT 1) FROM (SELECT 1) t
	inner := kernel.Column{ID: 1, Name: "one", Type: kernel.Int64}
	subquery := &plan.Map{Projections: []plan.Scalar{&plan.Literal{Value: int64(1), Typ: kernel.Int64}}, Schema_: []kernel.Column{inner}}
	subquery.Input = &plan.TableFreeScan{}

	outerCol := kernel.Column{ID: 2, Name: "t_one", Type: kernel.Int64}
	outer := &plan.Map{Projections: []plan.Scalar{&plan.Literal{Value: int64(1), Typ: kernel.Int64}}, Schema_: []kernel.Column{outerCol}}
	outer.Input = &plan.TableFreeScan{}

	outCol := kernel.Column{ID: 3, Name: "sub", Type: kernel.Int64}
	m := &plan.Map{
		Projections: []plan.Scalar{&plan.Subquery{Query: subquery, Typ: kernel.Int64}},
		Schema_:     []kernel.Column{outCol},
	}
	m.Input = outer

	got, identity, err := DecorrelateScalarSubquery(m)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	newMap, ok := got.(*plan.Map)
	require.True(t, ok)
	require.IsType(t, &plan.ColumnRef{}, newMap.Projections[0])
	join, ok := newMap.Input.(*plan.NestedLoopJoin)
	require.True(t, ok)
	require.Nil(t, join.Predicate)
	require.Same(t, plan.Node(outer), join.Left)
	require.Same(t, plan.Node(subquery), join.Right)
}

func TestDecorrelateExistsBuildsSemiJoin(t *testing.T) {
	inner := kernel.Column{ID: 1, Name: "id", Type: kernel.Int64}
	subquery := &plan.TableScan{Table: "orders", Schema_: []kernel.Column{inner}}

	outer := &plan.TableScan{Table: "customers"}
	f := &plan.Filter{Predicate: &plan.Exists{Query: subquery}}
	f.Input = outer

	got, identity, err := DecorrelateExists(f)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	join, ok := got.(*plan.HashJoin)
	require.True(t, ok)
	require.Equal(t, plan.SemiJoin, join.Type)
	require.Same(t, plan.Node(outer), join.Left)
	require.Same(t, plan.Node(subquery), join.Right)
	require.Empty(t, join.LeftKeys)
}

func TestDecorrelateExistsNegatedBuildsAntiJoin(t *testing.T) {
	subquery := &plan.TableScan{Table: "orders"}
	outer := &plan.TableScan{Table: "customers"}
	f := &plan.Filter{Predicate: &plan.Exists{Query: subquery, Negated: true}}
	f.Input = outer

	got, _, err := DecorrelateExists(f)
	require.NoError(t, err)
	join, ok := got.(*plan.HashJoin)
	require.True(t, ok)
	require.Equal(t, plan.AntiJoin, join.Type)
}

func TestApplyReachesFixedPoint(t *testing.T) {
	scan := &plan.TableScan{Table: "t"}
	f1 := &plan.Filter{Predicate: &plan.Literal{Value: true, Typ: kernel.Bool}}
	f1.Input = scan
	f2 := &plan.Filter{Predicate: &plan.Literal{Value: false, Typ: kernel.Bool}}
	f2.Input = f1

	got, err := Apply(f2)
	require.NoError(t, err)
	require.IsType(t, &plan.Filter{}, got)
	require.Equal(t, scan, got.(*plan.Filter).Input)
}
