package visitor

import (
	"github.com/flowlattice/flowlattice/lattice"
	"github.com/flowlattice/flowlattice/past"
)

// visitExpr implements spec.md §4.3's expression transfer functions,
// returning (handle, MultiLabel) as described in §4.2.
func (v *Visitor) visitExpr(e past.Expr) (Handle, lattice.MultiLabel, error) {
	if e == nil {
		return nil, lattice.EmptyMultiLabel(), nil
	}

	switch n := e.(type) {
	case *past.Constant:
		return nil, lattice.EmptyMultiLabel(), nil

	case *past.Name:
		return v.lookupName(n.ID, n.Line())

	case *past.BinOp:
		_, leftML, err := v.visitExpr(n.Left)
		if err != nil {
			return nil, lattice.MultiLabel{}, err
		}
		_, rightML, err := v.visitExpr(n.Right)
		if err != nil {
			return nil, lattice.MultiLabel{}, err
		}
		return nil, leftML.Combine(rightML), nil

	case *past.UnaryOp:
		_, ml, err := v.visitExpr(n.Operand)
		return nil, ml, err

	case *past.BoolOp:
		ml := lattice.EmptyMultiLabel()
		for _, value := range n.Values {
			_, m, err := v.visitExpr(value)
			if err != nil {
				return nil, lattice.MultiLabel{}, err
			}
			ml = ml.Combine(m)
		}
		return nil, ml, nil

	case *past.Compare:
		_, ml, err := v.visitExpr(n.Left)
		if err != nil {
			return nil, lattice.MultiLabel{}, err
		}
		for _, comparator := range n.Comparators {
			_, m, err := v.visitExpr(comparator)
			if err != nil {
				return nil, lattice.MultiLabel{}, err
			}
			ml = ml.Combine(m)
		}
		return nil, ml, nil

	case *past.Call:
		return v.visitCall(n)

	case *past.Attribute:
		return v.visitAttribute(n)

	case *past.MatchValue:
		_, ml, err := v.visitExpr(n.Value)
		return nil, ml, err

	case *past.MatchSingleton:
		return nil, lattice.EmptyMultiLabel(), nil

	default:
		return nil, lattice.MultiLabel{}, &unsupportedNodeError{kind: kindOf(e), line: e.Line()}
	}
}

// lookupName is spec.md §4.3's Name(id, lineno): combine the stored
// MultiLabel (if any) with a fresh one treating id as a source under
// every pattern that names it as a source, falling back to the
// uninitialized-source MultiLabel when id was never bound. Both the
// Name expression and Call's callee/receiver re-reads (§4.3's Call)
// route through this.
func (v *Visitor) lookupName(id string, lineno int) (Handle, lattice.MultiLabel, error) {
	node := lattice.NewNode(id, lineno)

	var result lattice.MultiLabel
	if stored, ok := v.multilabelling.Get(id); ok {
		fresh := lattice.ConstructMultiLabel(v.policy.PatternsBySource(id), []lattice.Label{lattice.SingleSource(node)})
		result = stored.Combine(fresh)
	} else {
		result = lattice.ForUninitialisedVariable(v.policy, node)
	}
	result = result.FixLineno(lineno)

	return Handle{node}, result, nil
}

// visitCall is spec.md §4.3's Call(func, args, keywords).
func (v *Visitor) visitCall(c *past.Call) (Handle, lattice.MultiLabel, error) {
	chain, _, err := v.visitExpr(c.Func)
	if err != nil {
		return nil, lattice.MultiLabel{}, err
	}
	if len(chain) == 0 {
		return nil, lattice.MultiLabel{}, &unsupportedNodeError{kind: "Call with no callee handle", line: c.Line()}
	}

	retML := lattice.EmptyMultiLabel()
	for _, arg := range c.Args {
		_, ml, err := v.visitExpr(arg)
		if err != nil {
			return nil, lattice.MultiLabel{}, err
		}
		retML = retML.Combine(ml)
	}
	for _, kw := range c.Keywords {
		_, ml, err := v.visitExpr(kw.Value)
		if err != nil {
			return nil, lattice.MultiLabel{}, err
		}
		retML = retML.Combine(ml)
	}
	for _, cond := range v.conditionsStack {
		retML = retML.Combine(cond)
	}

	for _, node := range chain {
		retML = retML.Sanitise(v.policy, node)
		v.vulnerabilities.AddVulnerability(v.policy, retML, node)
	}

	for _, node := range chain[:len(chain)-1] {
		_, nodeML, err := v.lookupNameNoHandle(node.Name, node.Line)
		if err != nil {
			return nil, lattice.MultiLabel{}, err
		}
		retML = retML.Combine(nodeML)
	}

	last := chain[len(chain)-1]
	v.multilabelling.Set(last.Name, lattice.EmptyMultiLabel())

	_, lastML, err := v.lookupNameNoHandle(last.Name, last.Line)
	if err != nil {
		return nil, lattice.MultiLabel{}, err
	}
	retML = retML.Combine(lastML)

	return chain, retML, nil
}

func (v *Visitor) lookupNameNoHandle(name string, line int) (Handle, lattice.MultiLabel, error) {
	_, ml, err := v.lookupName(name, line)
	return nil, ml, err
}

// visitAttribute is spec.md §4.3's Attribute(value, attr, lineno).
func (v *Visitor) visitAttribute(a *past.Attribute) (Handle, lattice.MultiLabel, error) {
	chainNodes, valueML, err := v.visitExpr(a.Value)
	if err != nil {
		return nil, lattice.MultiLabel{}, err
	}

	base := make(Handle, len(chainNodes))
	for i, n := range chainNodes {
		n.Initialise = false
		base[i] = n
	}

	attrNode := lattice.NewNode(a.Attr, a.Line())
	_, attrML, err := v.lookupNameNoHandle(a.Attr, a.Line())
	if err != nil {
		return nil, lattice.MultiLabel{}, err
	}

	return append(base, attrNode), valueML.Combine(attrML), nil
}

func kindOf(e past.Expr) string {
	switch e.(type) {
	case *past.Constant:
		return "Constant"
	case *past.Name:
		return "Name"
	case *past.BinOp:
		return "BinOp"
	case *past.UnaryOp:
		return "UnaryOp"
	case *past.BoolOp:
		return "BoolOp"
	case *past.Compare:
		return "Compare"
	case *past.Call:
		return "Call"
	case *past.Attribute:
		return "Attribute"
	case *past.MatchValue:
		return "MatchValue"
	case *past.MatchSingleton:
		return "MatchSingleton"
	default:
		return "unknown"
	}
}
