package ast

import (
	"fmt"

	"github.com/gala-lang/gala/internal/lexer/token"
	"github.com/gala-lang/gala/internal/parsetree"
)

func treePos(tree *parsetree.Tree) token.Pos {
	pos, _ := tree.Pos()
	return pos
}

func expectLabel(tree *parsetree.Tree, label string) error {
	if tree == nil {
		return &ShapeError{Expected: label, Got: "nothing"}
	}
	if tree.Label != label {
		return &ShapeError{Expected: label, Got: tree.Label, Pos: treePos(tree)}
	}
	return nil
}

func arityError(tree *parsetree.Tree, expected string) error {
	return &ShapeError{
		Expected: tree.Label,
		Got:      tree.Label,
		Pos:      treePos(tree),
		Message:  fmt.Sprintf("expected %s, got %d children", expected, len(tree.Children)),
	}
}

// soleSubtree returns the only child of tree, which has to be a subtree.
func soleSubtree(tree *parsetree.Tree) (*parsetree.Tree, error) {
	if len(tree.Children) != 1 || tree.Children[0].IsToken() {
		return nil, arityError(tree, "a single subtree")
	}
	return tree.Children[0].Tree, nil
}

// soleToken returns the only child of tree, which has to be a token.
func soleToken(tree *parsetree.Tree) (*token.Token, error) {
	if len(tree.Children) != 1 || !tree.Children[0].IsToken() {
		return nil, arityError(tree, "a single token")
	}
	return tree.Children[0].Token, nil
}

func subtrees(tree *parsetree.Tree) ([]*parsetree.Tree, error) {
	trees := make([]*parsetree.Tree, 0, len(tree.Children))
	for _, child := range tree.Children {
		if child.IsToken() {
			return nil, &ShapeError{
				Expected: tree.Label,
				Got:      tree.Label,
				Pos:      child.Token.Pos,
				Message:  fmt.Sprintf("unexpected token %q", child.Token.Text()),
			}
		}
		trees = append(trees, child.Tree)
	}
	return trees, nil
}

func unsupported(tree *parsetree.Tree) Result {
	return Result{Resolution: UNSUPPORTED, Label: tree.Label, Pos: treePos(tree)}
}

func resolved(node Node, tree *parsetree.Tree) Result {
	return Result{Resolution: RESOLVED, Node: node, Label: tree.Label, Pos: treePos(tree)}
}
