package memo

import (
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/stats"
	"github.com/dolthub/zeeql/storage"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	rowCount int64
	indexes  map[string][]storage.IndexDef
	distinct float64
}

func (f *fakeCatalog) TableStatistics(table string) *stats.TableStatistics {
	st := stats.NewTableStatistics()
	st.RowCount = f.rowCount
	sketch := stats.NewHLL()
	// Insert distinct-ish values so Distinct() approximates f.distinct.
	for i := 0; i < int(f.distinct); i++ {
		sketch.Insert([]byte{byte(i), byte(i >> 8)})
	}
	st.Columns[1] = &stats.ColumnStatistics{Sketch: sketch}
	return st
}

func (f *fakeCatalog) Indexes(table string) []storage.IndexDef {
	return f.indexes[table]
}

func TestTryIndexMatchUsesIndexWhenSelective(t *testing.T) {
	col := kernel.Column{ID: 1, Name: "a", Type: kernel.Int64}
	cat := &fakeCatalog{
		rowCount: 100000,
		distinct: 10000,
		indexes:  map[string][]storage.IndexDef{"t": {{Name: "idx_a", ColumnID: 1, Tree: storage.NewART()}}},
	}
	scan := &plan.TableScan{Table: "t", Schema_: []kernel.Column{col}}
	f := &plan.Filter{Predicate: &plan.BinaryOp{Op: "=", Left: &plan.ColumnRef{Column: col}, Right: &plan.Literal{Value: int64(5), Typ: kernel.Int64}}}
	f.Input = scan

	got, identity, err := tryIndexMatch(f, cat)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	require.IsType(t, &plan.IndexScan{}, got)
}

func TestChooseJoinStrategyPrefersNestedLoopForTinyBuildSide(t *testing.T) {
	cat := &fakeCatalog{rowCount: 2, indexes: map[string][]storage.IndexDef{}}
	left := &plan.TableScan{Table: "big"}
	right := &plan.TableScan{Table: "small"}
	hj := &plan.HashJoin{}
	hj.Left, hj.Right = left, right

	smallCat := &multiCatalog{sizes: map[string]int64{"big": 100000, "small": 2}}
	got, identity, err := chooseJoinStrategy(hj, smallCat)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	require.IsType(t, &plan.NestedLoopJoin{}, got)
}

func TestChooseJoinStrategySetsBroadcastForSmallBuildSide(t *testing.T) {
	left := &plan.TableScan{Table: "big"}
	right := &plan.TableScan{Table: "small"}
	hj := &plan.HashJoin{}
	hj.Left, hj.Right = left, right

	cat := &multiCatalog{sizes: map[string]int64{"big": 1000000, "small": 5000}}
	got, identity, err := chooseJoinStrategy(hj, cat)
	require.NoError(t, err)
	require.Equal(t, plan.NewTree, identity)
	broadcast, ok := got.(*plan.HashJoin)
	require.True(t, ok)
	require.True(t, broadcast.Broadcast)
}

func TestChooseJoinStrategyLeavesLargeBuildSideUnbroadcast(t *testing.T) {
	left := &plan.TableScan{Table: "big"}
	right := &plan.TableScan{Table: "alsobig"}
	hj := &plan.HashJoin{}
	hj.Left, hj.Right = left, right

	cat := &multiCatalog{sizes: map[string]int64{"big": 1000000, "alsobig": 900000}}
	got, identity, err := chooseJoinStrategy(hj, cat)
	require.NoError(t, err)
	require.Equal(t, plan.SameTree, identity)
	broadcast, ok := got.(*plan.HashJoin)
	require.True(t, ok)
	require.False(t, broadcast.Broadcast)
}

type multiCatalog struct {
	sizes map[string]int64
}

func (m *multiCatalog) TableStatistics(table string) *stats.TableStatistics {
	st := stats.NewTableStatistics()
	st.RowCount = m.sizes[table]
	return st
}
func (m *multiCatalog) Indexes(table string) []storage.IndexDef { return nil }
