// Package memo implements planner Phase B: cost-based selection among
// physical alternatives for each logical node (spec.md §4.4), grounded
// on zeedb:planner's cascades-lite approach of enumerating a small,
// fixed set of physical rules per logical shape and picking the cheapest
// by an additive cardinality-based cost model, rather than a full
// Cascades/Volcano search — the spec's testable properties (index match
// completeness, sort elimination) don't require general-purpose group
// expression memoization, only per-node alternative comparison.
package memo

import (
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/stats"
	"github.com/dolthub/zeeql/storage"
)

// Catalog resolves table/index metadata the cost model needs.
type Catalog interface {
	TableStatistics(table string) *stats.TableStatistics
	Indexes(table string) []storage.IndexDef
}

// Cost is an opaque, additive estimate; lower is better (spec.md §4.4).
type Cost float64

// Alternative is one physical candidate for a logical node plus its
// estimated cost.
type Alternative struct {
	Node plan.Node
	Cost Cost
}

// Optimize replaces every TableScan with the cheapest of {TableScan,
// IndexScan} available (an index match requires the filter predicate
// directly above it to be an equality/range on an indexed column), and
// every HashJoin/NestedLoopJoin pairing with whichever physical join is
// cheaper given each side's estimated row count, then removes
// now-redundant Sort nodes whose ordering is already guaranteed by an
// IndexScan beneath them (spec.md §4.4 "sort elimination").
func Optimize(n plan.Node, cat Catalog) (plan.Node, error) {
	rewritten, _, err := plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		switch v := node.(type) {
		case *plan.Filter:
			return tryIndexMatch(v, cat)
		case *plan.HashJoin:
			return chooseJoinStrategy(v, cat)
		case *plan.Sort:
			return eliminateRedundantSort(v, cat)
		default:
			return node, plan.SameTree, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return rewritten, nil
}

// tryIndexMatch rewrites Filter(TableScan(t), col OP literal) into an
// IndexScan when col has an index and OP is an equality/range comparison
// (spec.md §4.4 "index match completeness": every indexed equality/range
// predicate must be considered).
func tryIndexMatch(f *plan.Filter, cat Catalog) (plan.Node, plan.TreeIdentity, error) {
	scan, ok := f.Input.(*plan.TableScan)
	if !ok {
		return f, plan.SameTree, nil
	}
	cmp, ok := f.Predicate.(*plan.BinaryOp)
	if !ok || !isComparison(cmp.Op) {
		return f, plan.SameTree, nil
	}
	ref, lit, ok := splitColumnLiteral(cmp)
	if !ok {
		return f, plan.SameTree, nil
	}
	for _, idx := range cat.Indexes(scan.Table) {
		if idx.ColumnID != ref.Column.ID {
			continue
		}
		scanCost := cost(cat.TableStatistics(scan.Table).RowCount)
		selectivity := cat.TableStatistics(scan.Table).EqualitySelectivity(ref.Column.ID)
		idxCost := cost(float64(cat.TableStatistics(scan.Table).RowCount) * selectivity)
		if idxCost >= scanCost {
			continue
		}
		is := &plan.IndexScan{Table: scan.Table, Index: idx.Name, Schema_: scan.Schema_}
		if cmp.Op == "=" {
			is.Lo, is.Hi = lit, lit
		} else {
			is.Lo, is.Hi = rangeBounds(cmp.Op, lit)
		}
		return is, plan.NewTree, nil
	}
	return f, plan.SameTree, nil
}

func isComparison(op string) bool {
	switch op {
	case "=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func splitColumnLiteral(cmp *plan.BinaryOp) (*plan.ColumnRef, plan.Scalar, bool) {
	if ref, ok := cmp.Left.(*plan.ColumnRef); ok {
		if _, ok := cmp.Right.(*plan.Literal); ok {
			return ref, cmp.Right, true
		}
	}
	if ref, ok := cmp.Right.(*plan.ColumnRef); ok {
		if _, ok := cmp.Left.(*plan.Literal); ok {
			return ref, cmp.Left, true
		}
	}
	return nil, nil, false
}

func rangeBounds(op string, lit plan.Scalar) (lo, hi plan.Scalar) {
	switch op {
	case "<", "<=":
		return nil, lit
	case ">", ">=":
		return lit, nil
	default:
		return nil, nil
	}
}

func cost(rows int64) Cost { return Cost(float64(rows)) }

// broadcastRowThreshold is the largest build-side row count the cost
// model treats as "fits in broadcast memory" — small enough to
// replicate whole to every worker instead of hash-partitioning it
// (spec.md §4.4 "join strategy", §5.4 Broadcast node).
const broadcastRowThreshold = 10000

// chooseJoinStrategy compares a hash join's estimated cost (build side
// row count, since a hash table's build is its dominant cost) against a
// nested-loop join's (the product of both side's row counts), picking
// nested-loop only when the build side is tiny enough that hashtable
// overhead dominates (spec.md §4.4). When hash join wins, it also
// decides whether the build side is small enough to broadcast rather
// than hash-partition, setting HashJoin.Broadcast for the distribution
// phase to act on.
func chooseJoinStrategy(hj *plan.HashJoin, cat Catalog) (plan.Node, plan.TreeIdentity, error) {
	leftRows := estimateRows(hj.Left, cat)
	rightRows := estimateRows(hj.Right, cat)

	hashCost := Cost(float64(rightRows) + float64(leftRows))
	nestedCost := Cost(float64(leftRows) * float64(rightRows))

	if nestedCost < hashCost && rightRows < 64 {
		nl := &plan.NestedLoopJoin{Type: hj.Type, Predicate: hj.Predicate, Schema_: hj.Schema_}
		nl.Left, nl.Right = hj.Left, hj.Right
		return nl, plan.NewTree, nil
	}
	if !hj.Broadcast && rightRows < broadcastRowThreshold {
		cp := *hj
		cp.Broadcast = true
		return &cp, plan.NewTree, nil
	}
	return hj, plan.SameTree, nil
}

func estimateRows(n plan.Node, cat Catalog) int64 {
	switch v := n.(type) {
	case *plan.TableScan:
		return cat.TableStatistics(v.Table).RowCount
	case *plan.IndexScan:
		st := cat.TableStatistics(v.Table)
		if v.Lo != nil || v.Hi != nil {
			return int64(float64(st.RowCount) * 0.1)
		}
		return st.RowCount
	default:
		children := n.Children()
		if len(children) == 0 {
			return 1
		}
		return estimateRows(children[0], cat)
	}
}

// eliminateRedundantSort drops a single-key ascending Sort when its input
// is an IndexScan equality lookup on an index over the sort column
// (spec.md §4.4 "sort elimination"): every row such a lookup returns
// carries the same key value, so the rows are already in the requested
// order. A range IndexScan returns rows in tid order, not key order, so
// its Sort is kept.
func eliminateRedundantSort(s *plan.Sort, cat Catalog) (plan.Node, plan.TreeIdentity, error) {
	is, ok := s.Input.(*plan.IndexScan)
	if !ok {
		return s, plan.SameTree, nil
	}
	if len(s.Keys) != 1 {
		return s, plan.SameTree, nil
	}
	ref, ok := s.Keys[0].(*plan.ColumnRef)
	if !ok {
		return s, plan.SameTree, nil
	}
	if is.Lo == nil || is.Lo != is.Hi {
		return s, plan.SameTree, nil
	}
	indexedByThisColumn := false
	for _, idx := range cat.Indexes(is.Table) {
		if idx.Name == is.Index && idx.ColumnID == ref.Column.ID {
			indexedByThisColumn = true
		}
	}
	if !indexedByThisColumn || len(s.Descending) != 1 || s.Descending[0] {
		return s, plan.SameTree, nil
	}
	return is, plan.NewTree, nil
}
