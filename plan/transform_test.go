package plan

import (
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/stretchr/testify/require"
)

func TestTransformUpRewritesLeafAndReportsNewTree(t *testing.T) {
	scan := &TableScan{Table: "t", Schema_: []kernel.Column{{ID: 1, Name: "a", Type: kernel.Int64}}}
	filt := &Filter{unary: unary{Input: scan}, Predicate: &Literal{Value: true, Typ: kernel.Bool}}

	got, identity, err := TransformUp(filt, func(n Node) (Node, TreeIdentity, error) {
		if ts, ok := n.(*TableScan); ok {
			cp := *ts
			cp.Table = "renamed"
			return &cp, NewTree, nil
		}
		return n, SameTree, nil
	})
	require.NoError(t, err)
	require.Equal(t, NewTree, identity)
	require.Equal(t, "renamed", got.(*Filter).Input.(*TableScan).Table)
}

func TestTransformUpNoOpReportsSameTree(t *testing.T) {
	scan := &TableScan{Table: "t"}
	got, identity, err := TransformUp(scan, func(n Node) (Node, TreeIdentity, error) {
		return n, SameTree, nil
	})
	require.NoError(t, err)
	require.Equal(t, SameTree, identity)
	require.Same(t, scan, got)
}

func TestInspectVisitsEveryNode(t *testing.T) {
	scan := &TableScan{Table: "t"}
	filt := &Filter{unary: unary{Input: scan}}
	var visited []string
	Inspect(filt, func(n Node) bool {
		visited = append(visited, n.String())
		return true
	})
	require.Equal(t, []string{"Filter", "TableScan(t)"}, visited)
}

func TestWithChildrenRejectsWrongArity(t *testing.T) {
	scan := &TableScan{}
	_, err := scan.WithChildren(&TableScan{})
	require.Error(t, err)
}
