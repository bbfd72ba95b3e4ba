package pyast

import (
	"github.com/flowlattice/flowlattice/past"
	sitter "github.com/smacker/go-tree-sitter"
)

// translateBlockChildren translates every named child of a module or
// block node into a past.Stmt, skipping statement kinds this translator
// has no rule for rather than failing the whole file (an unsupported
// expression inside a translated statement still fails it) —
// parser_python.go's per-statement parse functions take the same
// best-effort stance (e.g. parsePythonAssignment silently returns on
// subscript/attribute targets it doesn't model).
func translateBlockChildren(node *sitter.Node, src []byte) ([]past.Stmt, error) {
	var stmts []past.Stmt
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		stmt, ok, err := translateStmt(child, src)
		if err != nil {
			return nil, err
		}
		if ok {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// translateStmt returns (nil, false, nil) for statement kinds with no
// taint-relevant rule (import, function/class definitions, docstrings,
// ...) so the surrounding block can skip them in place.
func translateStmt(node *sitter.Node, src []byte) (past.Stmt, bool, error) {
	line := lineOf(node)

	switch node.Type() {
	case "expression_statement":
		return translateExpressionStatement(node, src)

	case "if_statement":
		stmt, err := translateIf(node, src)
		return stmt, true, err

	case "while_statement":
		stmt, err := translateWhile(node, src)
		return stmt, true, err

	case "for_statement":
		stmt, err := translateFor(node, src)
		return stmt, true, err

	case "break_statement":
		return past.NewBreak(line), true, nil

	case "continue_statement":
		return past.NewContinue(line), true, nil

	case "match_statement":
		stmt, err := translateMatch(node, src)
		return stmt, true, err

	case "block":
		// Some grammar shapes hand a bare block down (e.g. a nested
		// suite); flatten it into a synthetic no-op by recursing isn't
		// expressible as one Stmt, so callers that expect a []Stmt use
		// translateBlockChildren directly instead.
		return nil, false, nil

	default:
		// Function/class defs, imports, pass, docstrings, decorators:
		// out of scope for taint transfer, skipped rather than erroring.
		return nil, false, nil
	}
}

func translateExpressionStatement(node *sitter.Node, src []byte) (past.Stmt, bool, error) {
	if node.NamedChildCount() == 0 {
		return nil, false, nil
	}
	inner := node.NamedChild(0)
	line := lineOf(node)

	switch inner.Type() {
	case "assignment":
		stmt, err := translateAssignment(inner, src)
		return stmt, true, err

	case "augmented_assignment":
		stmt, err := translateAugAssignment(inner, src)
		return stmt, true, err

	default:
		value, err := translateExpr(inner, src)
		if err != nil {
			return nil, false, err
		}
		return past.NewExprStmt(line, value), true, nil
	}
}

func translateAssignment(node *sitter.Node, src []byte) (past.Stmt, error) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	line := lineOf(node)

	target, err := translateExpr(left, src)
	if err != nil {
		return nil, err
	}
	value, err := translateExpr(right, src)
	if err != nil {
		return nil, err
	}
	return past.NewAssign(line, []past.Expr{target}, value), nil
}

func translateAugAssignment(node *sitter.Node, src []byte) (past.Stmt, error) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	opNode := node.ChildByFieldName("operator")
	line := lineOf(node)

	target, err := translateExpr(left, src)
	if err != nil {
		return nil, err
	}
	value, err := translateExpr(right, src)
	if err != nil {
		return nil, err
	}
	op := "+"
	if opNode != nil {
		op = opNode.Content(src)
	}
	return past.NewAugAssign(line, target, op, value), nil
}

func translateIf(node *sitter.Node, src []byte) (*past.If, error) {
	test, err := translateExpr(node.ChildByFieldName("condition"), src)
	if err != nil {
		return nil, err
	}
	body, err := translateBlockChildren(node.ChildByFieldName("consequence"), src)
	if err != nil {
		return nil, err
	}

	var orelse []past.Stmt
	alt := node.ChildByFieldName("alternative")
	if alt != nil {
		switch alt.Type() {
		case "else_clause":
			body2 := alt.ChildByFieldName("body")
			if body2 == nil && alt.NamedChildCount() > 0 {
				body2 = alt.NamedChild(alt.NamedChildCount() - 1)
			}
			orelse, err = translateBlockChildren(body2, src)
		case "elif_clause":
			nested, nestedErr := translateIf(alt, src)
			if nestedErr == nil {
				orelse = []past.Stmt{nested}
			}
			err = nestedErr
		}
		if err != nil {
			return nil, err
		}
	}

	return past.NewIf(lineOf(node), test, body, orelse), nil
}

func translateWhile(node *sitter.Node, src []byte) (*past.While, error) {
	test, err := translateExpr(node.ChildByFieldName("condition"), src)
	if err != nil {
		return nil, err
	}
	body, err := translateBlockChildren(node.ChildByFieldName("body"), src)
	if err != nil {
		return nil, err
	}

	var orelse []past.Stmt
	if alt := node.ChildByFieldName("alternative"); alt != nil {
		altBody := alt.ChildByFieldName("body")
		if altBody != nil {
			orelse, err = translateBlockChildren(altBody, src)
			if err != nil {
				return nil, err
			}
		}
	}

	return past.NewWhile(lineOf(node), test, body, orelse), nil
}

func translateFor(node *sitter.Node, src []byte) (*past.For, error) {
	target, err := translateExpr(node.ChildByFieldName("left"), src)
	if err != nil {
		return nil, err
	}
	iter, err := translateExpr(node.ChildByFieldName("right"), src)
	if err != nil {
		return nil, err
	}
	body, err := translateBlockChildren(node.ChildByFieldName("body"), src)
	if err != nil {
		return nil, err
	}

	var orelse []past.Stmt
	if alt := node.ChildByFieldName("alternative"); alt != nil {
		altBody := alt.ChildByFieldName("body")
		if altBody != nil {
			orelse, err = translateBlockChildren(altBody, src)
			if err != nil {
				return nil, err
			}
		}
	}

	return past.NewFor(lineOf(node), target, iter, body, orelse), nil
}

func translateMatch(node *sitter.Node, src []byte) (*past.Match, error) {
	subject, err := translateExpr(node.ChildByFieldName("subject"), src)
	if err != nil {
		return nil, err
	}

	body := node.ChildByFieldName("body")
	var cases []past.MatchCase
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			clause := body.NamedChild(i)
			if clause.Type() != "case_clause" {
				continue
			}
			c, err := translateCaseClause(clause, src)
			if err != nil {
				return nil, err
			}
			cases = append(cases, c)
		}
	}

	return past.NewMatch(lineOf(node), subject, cases), nil
}

func translateCaseClause(node *sitter.Node, src []byte) (past.MatchCase, error) {
	var pattern, guard past.Expr
	var err error

	if p := node.ChildByFieldName("pattern"); p != nil {
		pattern, err = translatePattern(p, src)
		if err != nil {
			return past.MatchCase{}, err
		}
	}
	if g := node.ChildByFieldName("guard"); g != nil {
		guard, err = translateExpr(g, src)
		if err != nil {
			return past.MatchCase{}, err
		}
	}

	var body []past.Stmt
	if b := node.ChildByFieldName("consequence"); b != nil {
		body, err = translateBlockChildren(b, src)
		if err != nil {
			return past.MatchCase{}, err
		}
	}

	return past.MatchCase{Pattern: pattern, Guard: guard, Body: body}, nil
}

// translatePattern translates case patterns into MatchValue/
// MatchSingleton; wildcard ("_") and capture patterns carry no taint
// meaning and are represented as a nil Pattern.
func translatePattern(node *sitter.Node, src []byte) (past.Expr, error) {
	line := lineOf(node)
	switch node.Type() {
	case "case_pattern":
		if node.NamedChildCount() > 0 {
			return translatePattern(node.NamedChild(0), src)
		}
		return nil, nil
	case "true":
		return past.NewMatchSingleton(line, true), nil
	case "false":
		return past.NewMatchSingleton(line, false), nil
	case "none":
		return past.NewMatchSingleton(line, nil), nil
	case "wildcard_pattern", "identifier":
		return nil, nil
	default:
		value, err := translateExpr(node, src)
		if err != nil {
			return nil, nil //nolint:nilerr
		}
		return past.NewMatchValue(line, value), nil
	}
}
