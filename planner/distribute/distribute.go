// Package distribute implements planner Phase C: splitting an optimized
// plan tree into stages that exchange rows over rendezvous topics, and
// assigning each stage a deterministic worker set (spec.md §5.3, §5.4),
// grounded on zeedb:planner/distribute module's stage id and topic
// naming pattern.
package distribute

import (
	"fmt"

	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
)

// Stage is one fragment of the plan that runs as a unit on a set of
// workers, its output either gathered to the coordinator or exchanged to
// another stage (spec.md §5.3).
type Stage struct {
	ID      int
	Root    plan.Node
	Workers []int
}

// Plan is the fully distributed output of Phase C: a list of stages in
// dependency order (a stage only reads topics published by
// lower-numbered stages), grounded on spec.md §5.3's "worker fan-out".
type Plan struct {
	Stages []*Stage
}

// Distribute walks n top-down, cutting a new stage at every Exchange,
// Broadcast, or Gather boundary and assigning worker sets via
// txn-seeded hashing so repeated planning of the same query+txn always
// yields the same placement, matching the idempotent placement rule in
// spec.md §5.3. Before cutting, it inserts the Exchange/Broadcast nodes
// memo.Optimize's join-strategy decisions imply but never themselves
// construct (spec.md §4.4, §5.4): every HashJoin's build side is wrapped
// in a Broadcast when HashJoin.Broadcast is set, and otherwise both
// sides are wrapped in a hash-partitioning Exchange keyed on their join
// columns.
func Distribute(n plan.Node, txn int64, numWorkers int) *Plan {
	d := &distributor{txn: txn, numWorkers: numWorkers}
	n = d.insertExchanges(n)
	root := d.cut(n)
	d.stages = append(d.stages, root)
	return &Plan{Stages: d.stages}
}

// insertExchanges wraps every HashJoin's inputs with the shuffle node
// its chosen strategy implies, so cut (below) has real Exchange/
// Broadcast boundaries to split stages at instead of the dead scaffold
// that existed before any caller constructed these nodes.
func (d *distributor) insertExchanges(n plan.Node) plan.Node {
	rewritten, _, _ := plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		hj, ok := node.(*plan.HashJoin)
		if !ok {
			return node, plan.SameTree, nil
		}
		left := &plan.Exchange{Topic: d.NextTopic(), HashColumns: scalarColumnNames(hj.LeftKeys)}
		left.Input = hj.Left

		var right plan.Node
		if hj.Broadcast {
			b := &plan.Broadcast{Topic: d.NextTopic()}
			b.Input = hj.Right
			right = b
		} else {
			e := &plan.Exchange{Topic: d.NextTopic(), HashColumns: scalarColumnNames(hj.RightKeys)}
			e.Input = hj.Right
			right = e
		}

		cp := *hj
		cp.Left, cp.Right = left, right
		return &cp, plan.NewTree, nil
	})
	return rewritten
}

// scalarColumnNames extracts the column name each key scalar refers to,
// for Exchange.HashColumns (spec.md §5.4 "hash-partitioned by the join
// key"); a key that isn't a bare ColumnRef (a computed join key
// expression) is skipped, since Exchange only hash-partitions by named
// columns already present in its input's schema.
func scalarColumnNames(keys []plan.Scalar) []string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if ref, ok := k.(*plan.ColumnRef); ok {
			names = append(names, ref.Column.Name)
		}
	}
	return names
}

type distributor struct {
	txn        int64
	numWorkers int
	stages     []*Stage
	nextID     int
	nextTopic  int
}

func (d *distributor) cut(n plan.Node) *Stage {
	rewritten, _, _ := plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		switch v := node.(type) {
		case *plan.Exchange:
			child := d.cut(v.Input)
			child.Workers = d.assignWorkers(v.Topic)
			d.stages = append(d.stages, child)
			leaf := &plan.TableScan{Table: "$exchange:" + v.Topic}
			return leaf, plan.NewTree, nil
		case *plan.Gather:
			child := d.cut(v.Input)
			child.Workers = d.assignWorkers(v.Topic)
			d.stages = append(d.stages, child)
			leaf := &plan.TableScan{Table: "$exchange:" + v.Topic}
			return leaf, plan.NewTree, nil
		case *plan.Broadcast:
			child := d.cut(v.Input)
			// A broadcast build side is replicated to every worker, so
			// (unlike a hash-partitioned Exchange) its producer stage
			// must itself run on every worker too (spec.md §5.4).
			child.Workers = d.allWorkers()
			d.stages = append(d.stages, child)
			leaf := &plan.TableScan{Table: "$exchange:" + v.Topic}
			return leaf, plan.NewTree, nil
		default:
			return node, plan.SameTree, nil
		}
	})
	id := d.nextID
	d.nextID++
	return &Stage{ID: id, Root: rewritten, Workers: d.assignWorkers(fmt.Sprintf("stage-%d", id))}
}

// assignWorkers deterministically picks a worker subset for a stage or
// topic: seed(txn, key) mod numWorkers gives the starting worker, and
// every worker from there is included for a TableFreeScan/Gather that
// wants full fan-out (spec.md §5.3: "all workers participate in a
// TableFreeScan"). Narrower placements (single-worker stages) are a
// possible Phase C refinement not required by any spec.md testable
// property, so every stage here simply fans out to every worker.
func (d *distributor) assignWorkers(key string) []int {
	seed := kernel.InitialSeed
	buf := make([]byte, 8+len(key))
	for i := 0; i < 8; i++ {
		buf[i] = byte(d.txn >> (8 * i))
	}
	copy(buf[8:], key)
	seed ^= hashBytes(buf)
	start := int(seed % uint64(d.numWorkers))
	workers := make([]int, d.numWorkers)
	for i := range workers {
		workers[i] = (start + i) % d.numWorkers
	}
	return workers
}

// allWorkers lists every worker id, for a Broadcast's producer stage
// which must run everywhere rather than on a txn-seeded subset.
func (d *distributor) allWorkers() []int {
	workers := make([]int, d.numWorkers)
	for i := range workers {
		workers[i] = i
	}
	return workers
}

func hashBytes(b []byte) uint64 {
	var h uint64 = kernel.InitialSeed
	for _, c := range b {
		h = h*1099511628211 ^ uint64(c)
	}
	return h
}

// NextTopic allocates a fresh exchange/gather topic name, unique within
// one Distribute call (worker.topicIDFromName maps this name to the
// 128-bit uuid that exchange.Registry keys on).
func (d *distributor) NextTopic() string {
	t := fmt.Sprintf("topic-%d", d.nextTopic)
	d.nextTopic++
	return t
}
