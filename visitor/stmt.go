package visitor

import (
	"github.com/flowlattice/flowlattice/lattice"
	"github.com/flowlattice/flowlattice/past"
)

// visitBody runs statements in source order, stopping early if one
// produces a Break/Continue signal for an enclosing loop to handle
// (spec.md §5: "statements are visited in source order").
func (v *Visitor) visitBody(stmts []past.Stmt) (signal, error) {
	for _, s := range stmts {
		sig, err := v.visitStmt(s)
		if err != nil {
			return signalNone, err
		}
		if sig != signalNone {
			return sig, nil
		}
	}
	return signalNone, nil
}

func (v *Visitor) visitStmt(s past.Stmt) (signal, error) {
	switch n := s.(type) {
	case *past.ExprStmt:
		_, _, err := v.visitExpr(n.Value)
		return signalNone, err

	case *past.Assign:
		return signalNone, v.execAssign(n.Targets, n.Value)

	case *past.AugAssign:
		binop := &past.BinOp{Op: n.Op, Left: n.Target, Right: n.Value}
		return signalNone, v.execAssign([]past.Expr{n.Target}, binop)

	case *past.If:
		return v.visitIf(n)

	case *past.While:
		return v.visitWhile(n)

	case *past.For:
		return v.visitFor(n)

	case *past.Match:
		return v.visitMatch(n)

	case *past.Break:
		return signalBreak, nil

	case *past.Continue:
		return signalContinue, nil

	default:
		return signalNone, &unsupportedNodeError{kind: stmtKindOf(s), line: s.Line()}
	}
}

// execAssign is spec.md §4.4's Assign(targets, value), also reused by
// AugAssign and For's per-iteration target update.
func (v *Visitor) execAssign(targets []past.Expr, value past.Expr) error {
	_, valueML, err := v.visitExpr(value)
	if err != nil {
		return err
	}

	combined := valueML
	for _, cond := range v.conditionsStack {
		combined = combined.Combine(cond)
	}

	for _, target := range targets {
		handle, _, err := v.visitExpr(target)
		if err != nil {
			return err
		}
		for _, node := range handle {
			v.vulnerabilities.AddVulnerability(v.policy, combined, node)
			if node.Initialise {
				v.multilabelling.Set(node.Name, combined)
			}
		}
	}
	return nil
}

// visitIf is spec.md §4.4's If(test, body, orelse).
func (v *Visitor) visitIf(s *past.If) (signal, error) {
	_, testML, err := v.visitExpr(s.Test)
	if err != nil {
		return signalNone, err
	}
	v.conditionsStack = append(v.conditionsStack, lattice.ImplicitPatternsMultiLabel(v.policy, testML))
	defer v.popCondition()

	savedML, savedVulns := v.multilabelling, v.vulnerabilities

	v.multilabelling = savedML.Clone()
	v.vulnerabilities = savedVulns.Clone()
	bodySig, err := v.visitBody(s.Body)
	if err != nil {
		return signalNone, err
	}
	bodyML, bodyVulns := v.multilabelling, v.vulnerabilities

	v.multilabelling = savedML.Clone()
	v.vulnerabilities = savedVulns.Clone()
	orElseSig, err := v.visitBody(s.OrElse)
	if err != nil {
		return signalNone, err
	}
	orElseML, orElseVulns := v.multilabelling, v.vulnerabilities

	v.multilabelling = lattice.Conciliate(v.policy, bodyML, orElseML)
	v.vulnerabilities = lattice.CombineVulnerabilities(bodyVulns, orElseVulns)

	return combineSignals(bodySig, orElseSig), nil
}

func (v *Visitor) popCondition() {
	v.conditionsStack = v.conditionsStack[:len(v.conditionsStack)-1]
}

// visitWhile is spec.md §4.4's While(test, body, orelse): a bounded
// fixpoint over a reserved conditions_stack slot.
func (v *Visitor) visitWhile(s *past.While) (signal, error) {
	_, testML, err := v.visitExpr(s.Test)
	if err != nil {
		return signalNone, err
	}
	v.conditionsStack = append(v.conditionsStack, lattice.ImplicitPatternsMultiLabel(v.policy, testML))
	slot := len(v.conditionsStack) - 1

	savedML, savedVulns := v.multilabelling, v.vulnerabilities
	v.multilabelling = savedML.Clone()
	v.vulnerabilities = savedVulns.Clone()

	history := []*lattice.MultiLabelling{v.multilabelling.Clone()}
	foundBreak := false
	converged := false

	for i := 0; i < maxLoopIterations; i++ {
		sig, err := v.visitBody(s.Body)
		if err != nil {
			return signalNone, err
		}
		if sig == signalBreak {
			foundBreak = true
			break
		}

		for _, h := range history {
			if v.multilabelling.Equal(h) {
				converged = true
				break
			}
		}
		if converged {
			break
		}
		history = append(history, v.multilabelling.Clone())

		_, testML, err = v.visitExpr(s.Test)
		if err != nil {
			return signalNone, err
		}
		v.conditionsStack[slot] = lattice.ImplicitPatternsMultiLabel(v.policy, testML)

		if i == maxLoopIterations-1 {
			v.iterationsExhausted++
		}
	}

	s1ML, s1Vulns := v.multilabelling, v.vulnerabilities

	if !foundBreak {
		v.conditionsStack = v.conditionsStack[:slot]
		v.multilabelling = s1ML
		v.vulnerabilities = s1Vulns
		return v.visitBody(s.OrElse)
	}

	v.multilabelling = s1ML.Clone()
	v.vulnerabilities = s1Vulns.Clone()
	orElseSig, err := v.visitBody(s.OrElse)
	if err != nil {
		return signalNone, err
	}
	orElseML, orElseVulns := v.multilabelling, v.vulnerabilities

	v.multilabelling = lattice.Conciliate(v.policy, s1ML, orElseML)
	v.vulnerabilities = lattice.CombineVulnerabilities(s1Vulns, orElseVulns)
	v.conditionsStack = v.conditionsStack[:slot]

	return orElseSig, nil
}

// visitFor is spec.md §4.4's For(target, iter, body, orelse): like
// While, but each iteration starts with Assign([target], iter) to
// propagate the iterator's taint into the loop variable. For has no
// boolean test, so — unlike While — it pushes nothing onto
// conditions_stack.
func (v *Visitor) visitFor(s *past.For) (signal, error) {
	savedML, savedVulns := v.multilabelling, v.vulnerabilities
	v.multilabelling = savedML.Clone()
	v.vulnerabilities = savedVulns.Clone()

	history := []*lattice.MultiLabelling{v.multilabelling.Clone()}
	foundBreak := false
	converged := false

	for i := 0; i < maxLoopIterations; i++ {
		if err := v.execAssign([]past.Expr{s.Target}, s.Iter); err != nil {
			return signalNone, err
		}

		sig, err := v.visitBody(s.Body)
		if err != nil {
			return signalNone, err
		}
		if sig == signalBreak {
			foundBreak = true
			break
		}

		for _, h := range history {
			if v.multilabelling.Equal(h) {
				converged = true
				break
			}
		}
		if converged {
			break
		}
		history = append(history, v.multilabelling.Clone())

		if i == maxLoopIterations-1 {
			v.iterationsExhausted++
		}
	}

	s1ML, s1Vulns := v.multilabelling, v.vulnerabilities

	if !foundBreak {
		v.multilabelling = s1ML
		v.vulnerabilities = s1Vulns
		return v.visitBody(s.OrElse)
	}

	v.multilabelling = s1ML.Clone()
	v.vulnerabilities = s1Vulns.Clone()
	orElseSig, err := v.visitBody(s.OrElse)
	if err != nil {
		return signalNone, err
	}
	orElseML, orElseVulns := v.multilabelling, v.vulnerabilities

	v.multilabelling = lattice.Conciliate(v.policy, s1ML, orElseML)
	v.vulnerabilities = lattice.CombineVulnerabilities(s1Vulns, orElseVulns)

	return orElseSig, nil
}

// visitMatch is spec.md §4.4's Match(subject, cases). The subject's
// implicit restriction is pushed once; each case additionally pushes its
// pattern/guard without ever popping them (spec.md §9: "intentional
// accumulation"). At the end exactly one entry is popped, the top of the
// stack: when any case pushed, that is the last case entry, and the
// subject's restriction and the other case entries stay on the stack.
func (v *Visitor) visitMatch(s *past.Match) (signal, error) {
	_, subjectML, err := v.visitExpr(s.Subject)
	if err != nil {
		return signalNone, err
	}
	v.conditionsStack = append(v.conditionsStack, lattice.ImplicitPatternsMultiLabel(v.policy, subjectML))

	savedML, savedVulns := v.multilabelling, v.vulnerabilities
	mergedML, mergedVulns := savedML, savedVulns
	overall := signalNone

	for i, c := range s.Cases {
		v.multilabelling = savedML.Clone()
		v.vulnerabilities = savedVulns.Clone()

		sig, err := v.visitMatchCase(c)
		if err != nil {
			return signalNone, err
		}

		if i == 0 {
			mergedML, mergedVulns = v.multilabelling, v.vulnerabilities
		} else {
			mergedML = lattice.Conciliate(v.policy, mergedML, v.multilabelling)
			mergedVulns = lattice.CombineVulnerabilities(mergedVulns, v.vulnerabilities)
		}
		overall = combineSignals(overall, sig)
	}

	v.multilabelling = mergedML
	v.vulnerabilities = mergedVulns
	v.popCondition()

	return overall, nil
}

func (v *Visitor) visitMatchCase(c past.MatchCase) (signal, error) {
	if c.Pattern != nil {
		_, patternML, err := v.visitExpr(c.Pattern)
		if err != nil {
			return signalNone, err
		}
		v.conditionsStack = append(v.conditionsStack, lattice.ImplicitPatternsMultiLabel(v.policy, patternML))
	}
	if c.Guard != nil {
		_, guardML, err := v.visitExpr(c.Guard)
		if err != nil {
			return signalNone, err
		}
		v.conditionsStack = append(v.conditionsStack, lattice.ImplicitPatternsMultiLabel(v.policy, guardML))
	}
	return v.visitBody(c.Body)
}

func stmtKindOf(s past.Stmt) string {
	switch s.(type) {
	case *past.ExprStmt:
		return "Expr"
	case *past.Assign:
		return "Assign"
	case *past.AugAssign:
		return "AugAssign"
	case *past.If:
		return "If"
	case *past.While:
		return "While"
	case *past.For:
		return "For"
	case *past.Match:
		return "Match"
	case *past.Break:
		return "Break"
	case *past.Continue:
		return "Continue"
	default:
		return "unknown"
	}
}
