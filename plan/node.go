// Package plan defines the logical/physical query plan tree shared by
// the rewrite, memo, and distribute planner phases and by the executor
// (spec.md §4), grounded on the dolthub/go-mysql-server sql.Node /
// transform.NodeFunc tree-traversal idiom.
package plan

import "github.com/dolthub/zeeql/kernel"

// Node is one operator in a plan tree. Every concrete node is immutable;
// rewriting a subtree means building a new node via WithChildren, never
// mutating in place (mirrors sql.Node's contract in the teacher repo).
type Node interface {
	Children() []Node
	WithChildren(children ...Node) (Node, error)
	// Schema reports the columns this node's output rows carry.
	Schema() []kernel.Column
	String() string
}

// Scalar is an expression tree evaluated per row (spec.md §4: predicates,
// projections, aggregate arguments). Kept deliberately small: literal,
// column reference, and the arithmetic/comparison operators kernel
// exposes, since the kernel package is what actually executes them, plus
// the Subquery and Exists forms that the rewrite phase turns into joins.
type Scalar interface {
	Children() []Scalar
	WithChildren(children ...Scalar) (Scalar, error)
	Type() kernel.DataType
	String() string
}

// ---- leaf scalars ----

type Literal struct {
	Value interface{}
	Typ   kernel.DataType
}

func (l *Literal) Children() []Scalar { return nil }
func (l *Literal) WithChildren(children ...Scalar) (Scalar, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return l, nil
}
func (l *Literal) Type() kernel.DataType { return l.Typ }
func (l *Literal) String() string        { return "literal" }

type ColumnRef struct {
	Column kernel.Column
}

func (c *ColumnRef) Children() []Scalar { return nil }
func (c *ColumnRef) WithChildren(children ...Scalar) (Scalar, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return c, nil
}
func (c *ColumnRef) Type() kernel.DataType { return c.Column.Type }
func (c *ColumnRef) String() string        { return c.Column.Name }

// BinaryOp covers +,-,*,/ and the comparison operators; Op names the
// operator symbol, resolution of which kernel function implements it
// happens in exec (spec.md §4.1, §4.5).
type BinaryOp struct {
	Op          string
	Left, Right Scalar
	ResultType  kernel.DataType
}

func (b *BinaryOp) Children() []Scalar { return []Scalar{b.Left, b.Right} }
func (b *BinaryOp) WithChildren(children ...Scalar) (Scalar, error) {
	if len(children) != 2 {
		return nil, ErrChildCount.New(2, len(children))
	}
	cp := *b
	cp.Left, cp.Right = children[0], children[1]
	return &cp, nil
}
func (b *BinaryOp) Type() kernel.DataType { return b.ResultType }
func (b *BinaryOp) String() string        { return b.Op }

// ColumnPair names an equality an outer-scope column must hold against a
// subquery's own column once the subquery is decorrelated into a join
// (spec.md §4.4 "decorrelate correlated ... subqueries"); Outer is a
// column from the plan enclosing the subquery, Inner a column from the
// subquery's own Schema().
type ColumnPair struct {
	Outer kernel.Column
	Inner kernel.Column
}

// Subquery is an opaque scalar subquery result: a single-column, single-
// row plan evaluated once per outer row (spec.md §8 scenario 5). It
// carries no direct Children since its Query is a Node, not a Scalar;
// the rewrite phase is expected to eliminate every Subquery before the
// memo/distribute phases run, turning it into a join (spec.md §4.4).
type Subquery struct {
	Query        Node
	Typ          kernel.DataType
	CorrelatedOn []ColumnPair
}

func (s *Subquery) Children() []Scalar { return nil }
func (s *Subquery) WithChildren(children ...Scalar) (Scalar, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return s, nil
}
func (s *Subquery) Type() kernel.DataType { return s.Typ }
func (s *Subquery) String() string        { return "Subquery" }

// Exists reports whether Query produces at least one row, optionally
// negated (NOT EXISTS). Like Subquery it is eliminated by the rewrite
// phase, which turns it into a SemiJoin/AntiJoin (spec.md §4.4
// "correlated EXISTS into semi-join").
type Exists struct {
	Query        Node
	Negated      bool
	CorrelatedOn []ColumnPair
}

func (e *Exists) Children() []Scalar { return nil }
func (e *Exists) WithChildren(children ...Scalar) (Scalar, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return e, nil
}
func (e *Exists) Type() kernel.DataType { return kernel.Bool }
func (e *Exists) String() string {
	if e.Negated {
		return "NotExists"
	}
	return "Exists"
}

// ---- plan node kinds (spec.md §4) ----

// TableScan reads every visible row of a named heap table.
type TableScan struct {
	Table  string
	Schema_ []kernel.Column
}

func (n *TableScan) Children() []Node { return nil }
func (n *TableScan) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *TableScan) Schema() []kernel.Column { return n.Schema_ }
func (n *TableScan) String() string          { return "TableScan(" + n.Table + ")" }

// IndexScan reads only the tids an ART lookup/range yields, then
// bitmap-scans the heap (spec.md §4.2).
type IndexScan struct {
	Table   string
	Index   string
	Schema_ []kernel.Column
	Lo, Hi  Scalar // either may be nil for an unbounded/equality bound
}

func (n *IndexScan) Children() []Node { return nil }
func (n *IndexScan) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *IndexScan) Schema() []kernel.Column { return n.Schema_ }
func (n *IndexScan) String() string          { return "IndexScan(" + n.Table + "." + n.Index + ")" }

// TableFreeScan has no input relation: the coordinator fans it out as
// one stage per worker, each worker contributing its local partition
// (spec.md §5.3).
type TableFreeScan struct {
	Schema_ []kernel.Column
}

func (n *TableFreeScan) Children() []Node { return nil }
func (n *TableFreeScan) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *TableFreeScan) Schema() []kernel.Column { return n.Schema_ }
func (n *TableFreeScan) String() string          { return "TableFreeScan" }

// Values is a literal row set (e.g. an INSERT ... VALUES source).
type Values struct {
	Schema_ []kernel.Column
	Rows    [][]Scalar
}

func (n *Values) Children() []Node { return nil }
func (n *Values) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *Values) Schema() []kernel.Column { return n.Schema_ }
func (n *Values) String() string          { return "Values" }

type unary struct {
	Input Node
}

func (u *unary) Children() []Node { return []Node{u.Input} }

// Filter keeps only rows where Predicate evaluates true (spec.md §4.5).
type Filter struct {
	unary
	Predicate Scalar
}

func (n *Filter) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Filter) Schema() []kernel.Column { return n.Input.Schema() }
func (n *Filter) String() string          { return "Filter" }

// Map projects/computes new columns from Input's rows (spec.md §4.5).
type Map struct {
	unary
	Projections []Scalar
	Schema_     []kernel.Column
}

func (n *Map) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Map) Schema() []kernel.Column { return n.Schema_ }
func (n *Map) String() string          { return "Map" }

// AggFunc names one aggregate call (COUNT, SUM, MIN, MAX; AVG is always
// rewritten to SUM/COUNT before this node is built, per SPEC_FULL.md's
// decision on spec.md's AVG open question).
type AggFunc struct {
	Func   string
	Arg    Scalar // nil for COUNT(*)
	Output kernel.Column
}

// Aggregate groups Input's rows by GroupBy and computes Funcs per group
// (spec.md §4.2 "hash aggregate").
type Aggregate struct {
	unary
	GroupBy []Scalar
	Funcs   []AggFunc
	Schema_ []kernel.Column
}

func (n *Aggregate) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Aggregate) Schema() []kernel.Column { return n.Schema_ }
func (n *Aggregate) String() string          { return "Aggregate" }

// Sort orders Input's rows by Keys (spec.md §4.5).
type Sort struct {
	unary
	Keys        []Scalar
	Descending  []bool
	NullsFirst  []bool
}

func (n *Sort) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Sort) Schema() []kernel.Column { return n.Input.Schema() }
func (n *Sort) String() string          { return "Sort" }

// Limit caps Input to the first N rows (spec.md §4.5).
type Limit struct {
	unary
	Count int64
}

func (n *Limit) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Limit) Schema() []kernel.Column { return n.Input.Schema() }
func (n *Limit) String() string          { return "Limit" }

// Gather funnels rows from every upstream exchange publisher on Topic
// into a single stream, used when a distributed stage's outputs must be
// collected back onto one worker (spec.md §5.3, §5.4).
type Gather struct {
	unary
	Topic   string
	Schema_ []kernel.Column
}

func (n *Gather) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Gather) Schema() []kernel.Column { return n.Schema_ }
func (n *Gather) String() string          { return "Gather(" + n.Topic + ")" }

// Broadcast publishes Input's rows to every worker on Topic, the
// dual of Gather (spec.md §5.4: replicate the build side of a
// broadcast join).
type Broadcast struct {
	unary
	Topic string
}

func (n *Broadcast) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Broadcast) Schema() []kernel.Column { return n.Input.Schema() }
func (n *Broadcast) String() string          { return "Broadcast(" + n.Topic + ")" }

// Exchange repartitions Input's rows by hash(HashColumns) across Topic's
// subscribers, the shuffle primitive behind a distributed hash join or
// hash aggregate (spec.md §5.3, §5.4).
type Exchange struct {
	unary
	Topic       string
	HashColumns []string
	NumOutputs  int
}

func (n *Exchange) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Exchange) Schema() []kernel.Column { return n.Input.Schema() }
func (n *Exchange) String() string          { return "Exchange(" + n.Topic + ")" }

// Out is the terminal node of a stage: its rows are what the stage
// reports back to the coordinator (spec.md §5.2 "statement" verb).
type Out struct {
	unary
}

func (n *Out) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Out) Schema() []kernel.Column { return n.Input.Schema() }
func (n *Out) String() string          { return "Out" }

type binary struct {
	Left, Right Node
}

func (b *binary) Children() []Node { return []Node{b.Left, b.Right} }

// JoinType distinguishes inner/left/semi/anti join semantics.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	SemiJoin
	AntiJoin
)

// HashJoin builds a hashtable over Right (the build side) and probes it
// with Left (spec.md §4.2).
type HashJoin struct {
	binary
	Type      JoinType
	LeftKeys  []Scalar
	RightKeys []Scalar
	Predicate Scalar // residual predicate beyond key equality, may be nil
	Schema_   []kernel.Column
	// Broadcast marks a join whose build side (Right) is small enough to
	// replicate to every worker whole, rather than hash-partitioning
	// both sides (spec.md §4.4's join strategy choice; spec.md §5.4's
	// Broadcast node is the distribution-phase realization of this flag).
	Broadcast bool
}

func (n *HashJoin) WithChildren(children ...Node) (Node, error) {
	if len(children) != 2 {
		return nil, ErrChildCount.New(2, len(children))
	}
	cp := *n
	cp.Left, cp.Right = children[0], children[1]
	return &cp, nil
}
func (n *HashJoin) Schema() []kernel.Column { return n.Schema_ }
func (n *HashJoin) String() string          { return "HashJoin" }

// NestedLoopJoin evaluates Predicate for every (left, right) row pair;
// the memo phase picks this only when no equality keys are available or
// the build side is small enough to make it cheaper (spec.md §4.4).
type NestedLoopJoin struct {
	binary
	Type      JoinType
	Predicate Scalar
	Schema_   []kernel.Column
}

func (n *NestedLoopJoin) WithChildren(children ...Node) (Node, error) {
	if len(children) != 2 {
		return nil, ErrChildCount.New(2, len(children))
	}
	cp := *n
	cp.Left, cp.Right = children[0], children[1]
	return &cp, nil
}
func (n *NestedLoopJoin) Schema() []kernel.Column { return n.Schema_ }
func (n *NestedLoopJoin) String() string          { return "NestedLoopJoin" }

// Union concatenates rows from every input with a matching schema
// (spec.md §4.5 set operations).
type Union struct {
	Inputs  []Node
	Schema_ []kernel.Column
}

func (n *Union) Children() []Node { return n.Inputs }
func (n *Union) WithChildren(children ...Node) (Node, error) {
	cp := *n
	cp.Inputs = children
	return &cp, nil
}
func (n *Union) Schema() []kernel.Column { return n.Schema_ }
func (n *Union) String() string          { return "Union" }

// CTEBinding names one WITH-clause binding: Query materializes once and
// Name is how CTERef nodes elsewhere in the tree refer back to it
// (spec.md §4.4, §8 scenario 6).
type CTEBinding struct {
	Name  string
	Query Node
}

// With scopes Bindings over Input; every CTERef under Input (or under a
// later binding) naming one of Bindings resolves to that binding's rows.
// The rewrite phase drops bindings no CTERef reaches and unwraps the
// With entirely once none remain (spec.md §4.4 "remove ... unused CTE
// references").
type With struct {
	Bindings []CTEBinding
	Input    Node
}

func (n *With) Children() []Node {
	children := make([]Node, 0, len(n.Bindings)+1)
	for _, b := range n.Bindings {
		children = append(children, b.Query)
	}
	return append(children, n.Input)
}
func (n *With) WithChildren(children ...Node) (Node, error) {
	if len(children) != len(n.Bindings)+1 {
		return nil, ErrChildCount.New(len(n.Bindings)+1, len(children))
	}
	cp := *n
	cp.Bindings = make([]CTEBinding, len(n.Bindings))
	for i, b := range n.Bindings {
		cp.Bindings[i] = CTEBinding{Name: b.Name, Query: children[i]}
	}
	cp.Input = children[len(children)-1]
	return &cp, nil
}
func (n *With) Schema() []kernel.Column { return n.Input.Schema() }
func (n *With) String() string          { return "With" }

// CTERef reads the rows bound to Name by an enclosing With. It is a leaf
// at the plan-node level even though it logically aliases another node,
// the same alias-by-name boundary dolthub/go-mysql-server draws between
// a table and its alias (sql/plan/tablealias_test.go).
type CTERef struct {
	Name    string
	Schema_ []kernel.Column
}

func (n *CTERef) Children() []Node { return nil }
func (n *CTERef) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *CTERef) Schema() []kernel.Column { return n.Schema_ }
func (n *CTERef) String() string          { return "CTERef(" + n.Name + ")" }

// ---- DDL/DML and script sequencing (spec.md §2, §7) ----

// CreateTable is a DDL procedure node: no rows in, no rows out.
type CreateTable struct {
	Table  string
	Schema_ []kernel.Column
}

func (n *CreateTable) Children() []Node { return nil }
func (n *CreateTable) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *CreateTable) Schema() []kernel.Column { return nil }
func (n *CreateTable) String() string          { return "CreateTable(" + n.Table + ")" }

// DropTable is a DDL procedure node.
type DropTable struct {
	Table string
}

func (n *DropTable) Children() []Node { return nil }
func (n *DropTable) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *DropTable) Schema() []kernel.Column { return nil }
func (n *DropTable) String() string          { return "DropTable(" + n.Table + ")" }

// Insert writes Input's rows into Table (spec.md §2 DML).
type Insert struct {
	unary
	Table string
}

func (n *Insert) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Insert) Schema() []kernel.Column { return nil }
func (n *Insert) String() string          { return "Insert(" + n.Table + ")" }

// Delete removes Input's rows (by $tid) from Table.
type Delete struct {
	unary
	Table string
}

func (n *Delete) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, ErrChildCount.New(1, len(children))
	}
	cp := *n
	cp.Input = children[0]
	return &cp, nil
}
func (n *Delete) Schema() []kernel.Column { return nil }
func (n *Delete) String() string          { return "Delete(" + n.Table + ")" }

// SetVariable assigns Value to a session/query variable (spec.md §7
// "set-variable").
type SetVariable struct {
	Name  string
	Value Scalar
}

func (n *SetVariable) Children() []Node { return nil }
func (n *SetVariable) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, ErrChildCount.New(0, len(children))
	}
	return n, nil
}
func (n *SetVariable) Schema() []kernel.Column { return nil }
func (n *SetVariable) String() string          { return "SetVariable(" + n.Name + ")" }

// Script runs Statements in order, threading SetVariable bindings from
// one into the next (spec.md §7 "script sequencing").
type Script struct {
	Statements []Node
}

func (n *Script) Children() []Node { return n.Statements }
func (n *Script) WithChildren(children ...Node) (Node, error) {
	cp := *n
	cp.Statements = children
	return &cp, nil
}
func (n *Script) Schema() []kernel.Column {
	if len(n.Statements) == 0 {
		return nil
	}
	return n.Statements[len(n.Statements)-1].Schema()
}
func (n *Script) String() string { return "Script" }
