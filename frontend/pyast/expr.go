package pyast

import (
	"strconv"
	"strings"

	"github.com/flowlattice/flowlattice/past"
	sitter "github.com/smacker/go-tree-sitter"
)

func translateExpr(node *sitter.Node, src []byte) (past.Expr, error) {
	if node == nil {
		return nil, nil
	}
	line := lineOf(node)

	switch node.Type() {
	case "identifier":
		return past.NewName(line, node.Content(src)), nil

	case "integer":
		n, _ := strconv.ParseInt(node.Content(src), 0, 64)
		return past.NewConstant(line, n), nil

	case "float":
		f, _ := strconv.ParseFloat(node.Content(src), 64)
		return past.NewConstant(line, f), nil

	case "true":
		return past.NewConstant(line, true), nil
	case "false":
		return past.NewConstant(line, false), nil
	case "none":
		return past.NewConstant(line, nil), nil

	case "string":
		return past.NewConstant(line, stringLiteral(node, src)), nil

	case "parenthesized_expression":
		if node.NamedChildCount() > 0 {
			return translateExpr(node.NamedChild(0), src)
		}
		return past.NewConstant(line, nil), nil

	case "not_operator":
		operand, err := translateExpr(node.ChildByFieldName("argument"), src)
		if err != nil {
			return nil, err
		}
		return past.NewUnaryOp(line, "not", operand), nil

	case "unary_operator":
		operand, err := translateExpr(node.ChildByFieldName("argument"), src)
		if err != nil {
			return nil, err
		}
		op := "-"
		if opNode := node.ChildByFieldName("operator"); opNode != nil {
			op = opNode.Content(src)
		}
		return past.NewUnaryOp(line, op, operand), nil

	case "binary_operator":
		left, err := translateExpr(node.ChildByFieldName("left"), src)
		if err != nil {
			return nil, err
		}
		right, err := translateExpr(node.ChildByFieldName("right"), src)
		if err != nil {
			return nil, err
		}
		op := "+"
		if opNode := node.ChildByFieldName("operator"); opNode != nil {
			op = opNode.Content(src)
		}
		return past.NewBinOp(line, op, left, right), nil

	case "boolean_operator":
		left, err := translateExpr(node.ChildByFieldName("left"), src)
		if err != nil {
			return nil, err
		}
		right, err := translateExpr(node.ChildByFieldName("right"), src)
		if err != nil {
			return nil, err
		}
		op := "and"
		if opNode := node.ChildByFieldName("operator"); opNode != nil {
			op = opNode.Content(src)
		}
		return past.NewBoolOp(line, op, []past.Expr{left, right}), nil

	case "comparison_operator":
		return translateComparison(node, src)

	case "attribute":
		value, err := translateExpr(node.ChildByFieldName("object"), src)
		if err != nil {
			return nil, err
		}
		attr := node.ChildByFieldName("attribute")
		name := ""
		if attr != nil {
			name = attr.Content(src)
		}
		return past.NewAttribute(line, value, name), nil

	case "call":
		return translateCall(node, src)

	default:
		return nil, &UnsupportedNodeError{Kind: node.Type(), Line: line}
	}
}

// stringLiteral returns the decoded text of a Python string node's
// content child, or the raw source text if the grammar didn't split
// the string into string_start/string_content/string_end (older
// tree-sitter-python grammar versions keep "string" as one leaf).
func stringLiteral(node *sitter.Node, src []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "string_content" {
			return child.Content(src)
		}
	}
	raw := node.Content(src)
	return strings.Trim(raw, "\"'")
}

func translateComparison(node *sitter.Node, src []byte) (past.Expr, error) {
	left, err := translateExpr(node.ChildByFieldName("left"), src)
	if err != nil {
		return nil, err
	}

	// Operator tokens (e.g. "==", "<", "is not") are unnamed leaves
	// interleaved between operands; named children are left followed by
	// one operand per chained comparison (a < b < c).
	var ops []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.IsNamed() && isComparisonOperator(child.Type()) {
			ops = append(ops, child.Type())
		}
	}

	var comparators []past.Expr
	for i := 1; i < int(node.NamedChildCount()); i++ {
		comparator, err := translateExpr(node.NamedChild(i), src)
		if err != nil {
			return nil, err
		}
		comparators = append(comparators, comparator)
	}
	for len(ops) < len(comparators) {
		ops = append(ops, "==")
	}

	return past.NewCompare(lineOf(node), left, ops, comparators), nil
}

func isComparisonOperator(kind string) bool {
	switch kind {
	case "<", "<=", "==", "!=", ">=", ">", "<>", "in", "not in", "is", "is not":
		return true
	default:
		return false
	}
}

func translateCall(node *sitter.Node, src []byte) (past.Expr, error) {
	fn, err := translateExpr(node.ChildByFieldName("function"), src)
	if err != nil {
		return nil, err
	}

	var args []past.Expr
	var keywords []past.Keyword
	argList := node.ChildByFieldName("arguments")
	if argList != nil {
		for i := 0; i < int(argList.NamedChildCount()); i++ {
			arg := argList.NamedChild(i)
			if arg.Type() == "keyword_argument" {
				nameNode := arg.ChildByFieldName("name")
				valueNode := arg.ChildByFieldName("value")
				value, err := translateExpr(valueNode, src)
				if err != nil {
					return nil, err
				}
				name := ""
				if nameNode != nil {
					name = nameNode.Content(src)
				}
				keywords = append(keywords, past.Keyword{Name: name, Value: value})
				continue
			}
			value, err := translateExpr(arg, src)
			if err != nil {
				return nil, err
			}
			args = append(args, value)
		}
	}

	return past.NewCall(lineOf(node), fn, args, keywords), nil
}
