// Package pyast translates a Python source file into the past node
// tree, using tree-sitter's Python grammar the way graph/parser_python.go
// walks it for call-graph construction: SetLanguage, ParseCtx, then a
// recursive descent over (*sitter.Node).Type().
package pyast

import (
	"context"
	"fmt"

	"github.com/flowlattice/flowlattice/past"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// UnsupportedNodeError reports a tree-sitter node kind this translator
// has no rule for yet.
type UnsupportedNodeError struct {
	Kind string
	Line int
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("pyast: unsupported node kind %q at line %d", e.Kind, e.Line)
}

func lineOf(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// Parse translates a Python source file's top-level statements into
// past.Stmt, the same shape visitor.Run consumes.
func Parse(source []byte) ([]past.Stmt, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("pyast: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	return translateBlockChildren(root, source)
}
