// Package lattice implements the taint lattice algebra that the
// analysis engine folds over the AST: Node, Label, MultiLabel,
// MultiLabelling and Vulnerabilities (spec.md §3, §4.1). It carries no
// AST-walking logic itself — that lives in package visitor — only the
// value types and the combine/sanitise/conciliate operations defined
// over them.
package lattice

// UninitialisedLine is the sentinel line number assigned to the
// synthetic source a MultiLabelling.Conciliate manufactures for a
// variable defined on only one side of a branch (spec.md §4.6). It is
// rewritten to a real line the first time that variable is read, via
// Node.FixLineno.
const UninitialisedLine = -1

// Node is an identifier occurrence: (name, line). Equality and hashing
// use both fields (spec.md §3). Initialise records whether an
// assignment to this handle should mutate the MultiLabelling —
// attribute chains set this false on their base nodes since `a.b = x`
// must not rebind `a` (spec.md §4.3's Attribute transfer).
type Node struct {
	Name       string
	Line       int
	Initialise bool
}

// NewNode builds a Node with Initialise defaulting to true, matching
// spec.md §3's "initialise: bool (default true)".
func NewNode(name string, line int) Node {
	return Node{Name: name, Line: line, Initialise: true}
}

// Key returns the (name, line) pair used for equality and map-keying.
// Node itself is comparable and may be used directly as a map key; Key
// exists for call sites that want the pair spelled out.
func (n Node) Key() (string, int) {
	return n.Name, n.Line
}

// FixLineno rewrites n's line from the UninitialisedLine sentinel to
// ln, the first concrete observation point for a variable that was
// only conditionally defined on the path that produced n (spec.md
// §3's Node lifecycle, §4.6).
func (n Node) FixLineno(ln int) Node {
	if n.Line != UninitialisedLine {
		return n
	}
	n.Line = ln
	return n
}
