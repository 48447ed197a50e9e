package worker

import (
	"github.com/dolthub/zeeql/kernel"
	"github.com/dolthub/zeeql/plan"
	"github.com/dolthub/zeeql/rpcapi"
)

// SubstituteParams replaces every bound-parameter placeholder scalar in n
// with a concrete plan.Literal from params, by position (spec.md §5.2:
// a query/statement carries its parameter values alongside the plan).
// A ParamRef with no matching params entry is an internal protocol
// error — the coordinator is responsible for supplying exactly as many
// params as the plan references.
func SubstituteParams(n plan.Node, params []rpcapi.Param) (plan.Node, error) {
	rewritten, _, err := plan.TransformUp(n, func(node plan.Node) (plan.Node, plan.TreeIdentity, error) {
		haver, ok := node.(plan.ExpressionHaver)
		if !ok {
			return node, plan.SameTree, nil
		}
		changed := false
		newExprs := make([]plan.Scalar, len(haver.Expressions()))
		for i, e := range haver.Expressions() {
			ne, identity, err := plan.TransformExpressionsUp(e, func(s plan.Scalar) (plan.Scalar, plan.TreeIdentity, error) {
				ref, ok := s.(*ParamRef)
				if !ok {
					return s, plan.SameTree, nil
				}
				if ref.Index < 0 || ref.Index >= len(params) {
					return nil, plan.SameTree, ErrMissingParam.New(ref.Index)
				}
				p := params[ref.Index]
				return &plan.Literal{Value: p.Value, Typ: p.Type}, plan.NewTree, nil
			})
			if err != nil {
				return nil, plan.SameTree, err
			}
			newExprs[i] = ne
			if identity == plan.NewTree {
				changed = true
			}
		}
		if !changed {
			return node, plan.SameTree, nil
		}
		return haver.WithExpressions(newExprs), plan.NewTree, nil
	})
	if err != nil {
		return nil, err
	}
	return rewritten, nil
}

// ParamRef is a placeholder scalar standing in for "$N" in a
// parameterized statement, resolved by SubstituteParams before
// execution (spec.md §5.2).
type ParamRef struct {
	Index int
	Typ   kernel.DataType
}

func (p *ParamRef) Children() []plan.Scalar { return nil }
func (p *ParamRef) WithChildren(children ...plan.Scalar) (plan.Scalar, error) {
	return p, nil
}
func (p *ParamRef) Type() kernel.DataType { return p.Typ }
func (p *ParamRef) String() string        { return "param" }
