package plan

// TreeIdentity reports whether a transform actually produced a new node,
// letting a caller skip rebuilding parents when nothing below them
// changed (mirrors the teacher's sql/transform package).
type TreeIdentity bool

const (
	SameTree TreeIdentity = false
	NewTree  TreeIdentity = true
)

// NodeFunc is applied to every node in a tree during a transform pass.
type NodeFunc func(n Node) (Node, TreeIdentity, error)

// TransformUp rewrites every node of tree bottom-up: children are
// rewritten (and their rewritten forms substituted) before f is applied
// to the node itself. This is the workhorse the rewrite phase uses for
// filter/project pushdown and the memo phase uses to apply physical
// rules (spec.md §4.4).
func TransformUp(n Node, f NodeFunc) (Node, TreeIdentity, error) {
	children := n.Children()
	if len(children) == 0 {
		return f(n)
	}
	newChildren := make([]Node, len(children))
	same := SameTree
	for i, c := range children {
		nc, identity, err := TransformUp(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		newChildren[i] = nc
		if identity == NewTree {
			same = NewTree
		}
	}
	cur := n
	if same == NewTree {
		var err error
		cur, err = n.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}
	newNode, identity, err := f(cur)
	if err != nil {
		return nil, SameTree, err
	}
	if identity == NewTree {
		same = NewTree
	}
	return newNode, same, nil
}

// Inspect walks every node of tree, calling f; stops early if f returns
// false for a node (its children are then skipped).
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, f)
	}
}

// ScalarFunc is applied to every scalar in an expression tree.
type ScalarFunc func(s Scalar) (Scalar, TreeIdentity, error)

// TransformExpressionsUp rewrites every Scalar in the expression tree
// rooted at s bottom-up. A plan node's own scalar fields
// (Filter.Predicate, Map.Projections, ...) are reached by applying it to
// each expression the node exposes through ExpressionHaver.
func TransformExpressionsUp(s Scalar, f ScalarFunc) (Scalar, TreeIdentity, error) {
	children := s.Children()
	if len(children) == 0 {
		return f(s)
	}
	newChildren := make([]Scalar, len(children))
	same := SameTree
	for i, c := range children {
		nc, identity, err := TransformExpressionsUp(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		newChildren[i] = nc
		if identity == NewTree {
			same = NewTree
		}
	}
	cur := s
	if same == NewTree {
		var err error
		cur, err = s.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}
	newScalar, identity, err := f(cur)
	if err != nil {
		return nil, SameTree, err
	}
	if identity == NewTree {
		same = NewTree
	}
	return newScalar, same, nil
}
