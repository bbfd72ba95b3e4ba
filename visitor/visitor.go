// Package visitor implements the transfer engine: the recursive
// descent over a past.Stmt/past.Expr tree that folds source code into
// a lattice.Vulnerabilities accumulator (spec.md §4.2-§4.6). It is the
// one package that mutates lattice values in response to AST shape;
// lattice itself stays a pure value algebra.
package visitor

import (
	"fmt"

	"github.com/flowlattice/flowlattice/lattice"
	"github.com/flowlattice/flowlattice/past"
	"github.com/flowlattice/flowlattice/policy"
)

// maxLoopIterations bounds the While/For fixpoint (spec.md §4.4, §7:
// "degrade gracefully... no partial-result retry").
const maxLoopIterations = 10000

// Handle is an expression's "address": either nil (a pure-value
// expression carries no handle), a single element (a Name), or more
// than one (an attribute chain, base-to-leaf order) — spec.md §4.2.
type Handle []lattice.Node

// Visitor holds the analysis state described in spec.md §4.2: the
// policy being enforced, the running Vulnerabilities accumulator, the
// current abstract store, and the stack of active implicit-flow
// contexts from enclosing if/while/match tests (a For loop pushes none).
type Visitor struct {
	policy          *policy.Policy
	vulnerabilities *lattice.Vulnerabilities
	multilabelling  *lattice.MultiLabelling
	conditionsStack []lattice.MultiLabel

	// iterationsExhausted counts While/For loops that hit
	// maxLoopIterations without reaching a fixpoint (spec.md §7:
	// logged, not fatal).
	iterationsExhausted int
}

// New builds a Visitor with an empty store and vulnerability set.
func New(pol *policy.Policy) *Visitor {
	return &Visitor{
		policy:          pol,
		vulnerabilities: lattice.NewVulnerabilities(),
		multilabelling:  lattice.NewMultiLabelling(),
	}
}

// IterationsExhausted reports how many loops were cut off by
// maxLoopIterations without converging, for callers that want to
// surface a warning (spec.md §7: "optionally log").
func (v *Visitor) IterationsExhausted() int {
	return v.iterationsExhausted
}

// Run analyzes program — a top-level statement sequence (spec.md §1)
// — and returns the accumulated Vulnerabilities.
func (v *Visitor) Run(program []past.Stmt) (*lattice.Vulnerabilities, error) {
	if _, err := v.visitBody(program); err != nil {
		return nil, err
	}
	return v.vulnerabilities, nil
}

// unsupportedNodeError is returned for any past node kind the engine
// has no transfer function for (spec.md §7: "unsupported AST kind:
// the visitor refuses").
type unsupportedNodeError struct {
	kind string
	line int
}

func (e *unsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported AST node %s at line %d", e.kind, e.line)
}
