package distribute

import (
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/stretchr/testify/require"
)

func kernelColumnForTest() kernel.Column {
	return kernel.Column{ID: 1, Name: "id", Table: "t", Type: kernel.Int64}
}

func TestDistributeCutsStageAtExchange(t *testing.T) {
	scan := &plan.TableScan{Table: "t"}
	ex := &plan.Exchange{Topic: "topic-0", HashColumns: []string{"a"}}
	ex.Input = scan
	out := &plan.Out{}
	out.Input = ex

	p := Distribute(out, 42, 4)
	require.Len(t, p.Stages, 2)
	require.Equal(t, scan, p.Stages[0].Root)
}

func TestDistributeCutsStageAtBroadcastAndRunsItOnEveryWorker(t *testing.T) {
	scan := &plan.TableScan{Table: "small"}
	b := &plan.Broadcast{Topic: "topic-0"}
	b.Input = scan
	out := &plan.Out{}
	out.Input = b

	p := Distribute(out, 42, 4)
	require.Len(t, p.Stages, 2)
	require.Equal(t, scan, p.Stages[0].Root)
	require.ElementsMatch(t, []int{0, 1, 2, 3}, p.Stages[0].Workers)
}

func TestInsertExchangesWrapsBroadcastJoinBuildSideOnly(t *testing.T) {
	left := &plan.TableScan{Table: "big"}
	right := &plan.TableScan{Table: "small"}
	hj := &plan.HashJoin{Broadcast: true}
	hj.Left, hj.Right = left, right

	d := &distributor{txn: 1, numWorkers: 4}
	got := d.insertExchanges(hj)
	join, ok := got.(*plan.HashJoin)
	require.True(t, ok)
	require.IsType(t, &plan.Exchange{}, join.Left)
	require.IsType(t, &plan.Broadcast{}, join.Right)
}

func TestInsertExchangesWrapsBothSidesOfNonBroadcastJoin(t *testing.T) {
	left := &plan.TableScan{Table: "big"}
	right := &plan.TableScan{Table: "alsobig"}
	col := kernelColumnForTest()
	hj := &plan.HashJoin{LeftKeys: []plan.Scalar{&plan.ColumnRef{Column: col}}, RightKeys: []plan.Scalar{&plan.ColumnRef{Column: col}}}
	hj.Left, hj.Right = left, right

	d := &distributor{txn: 1, numWorkers: 4}
	got := d.insertExchanges(hj)
	join, ok := got.(*plan.HashJoin)
	require.True(t, ok)
	leftExchange, ok := join.Left.(*plan.Exchange)
	require.True(t, ok)
	require.Equal(t, []string{"id"}, leftExchange.HashColumns)
	require.IsType(t, &plan.Exchange{}, join.Right)
}

func TestAssignWorkersIsDeterministicForSameTxn(t *testing.T) {
	d1 := &distributor{txn: 7, numWorkers: 8}
	d2 := &distributor{txn: 7, numWorkers: 8}
	require.Equal(t, d1.assignWorkers("stage-0"), d2.assignWorkers("stage-0"))
}

func TestAssignWorkersCoversEveryWorkerExactlyOnce(t *testing.T) {
	d := &distributor{txn: 3, numWorkers: 5}
	workers := d.assignWorkers("stage-0")
	require.Len(t, workers, 5)
	seen := make(map[int]bool)
	for _, w := range workers {
		seen[w] = true
	}
	require.Len(t, seen, 5)
}
