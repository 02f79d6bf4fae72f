// Package parsetree is the concrete syntax tree produced by the parser
// engine: production labels with ordered children, each child either a
// subtree or a terminal token.
package parsetree

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gala-lang/gala/internal/lexer/token"
)

type Tree struct {
	Label    string
	Children []Child
}

// Child holds exactly one of Tree or Token.
type Child struct {
	Tree  *Tree
	Token *token.Token
}

func TreeChild(tree *Tree) Child        { return Child{Tree: tree} }
func TokenChild(tok *token.Token) Child { return Child{Token: tok} }

func (c Child) IsToken() bool { return c.Token != nil }

// Label returns the production label of a subtree or the kind of a token.
func (c Child) Label() string {
	if c.Token != nil {
		return string(c.Token.Kind)
	}
	return c.Tree.Label
}

func New(label string, children ...Child) *Tree {
	return &Tree{Label: label, Children: children}
}

// Pos returns the position of the first token under the tree.
func (t *Tree) Pos() (token.Pos, bool) {
	for _, child := range t.Children {
		if child.Token != nil {
			return child.Token.Pos, true
		}
		if pos, ok := child.Tree.Pos(); ok {
			return pos, true
		}
	}
	return token.Pos{}, false
}

// Subtrees returns the children that are trees.
func (t *Tree) Subtrees() []*Tree {
	var trees []*Tree
	for _, child := range t.Children {
		if child.Tree != nil {
			trees = append(trees, child.Tree)
		}
	}
	return trees
}

// Equal reports whether both trees have the same labels, child order and
// token kinds and lexemes. Positions are not compared.
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Label != other.Label || len(t.Children) != len(other.Children) {
		return false
	}
	for i, child := range t.Children {
		o := other.Children[i]
		if child.IsToken() != o.IsToken() {
			return false
		}
		if child.IsToken() {
			if child.Token.Kind != o.Token.Kind || !bytes.Equal(child.Token.Lexeme, o.Token.Lexeme) {
				return false
			}
			continue
		}
		if !child.Tree.Equal(o.Tree) {
			return false
		}
	}
	return true
}

// Pretty renders the tree one node per line, indented by depth.
func (t *Tree) Pretty() string {
	var b strings.Builder
	t.pretty(&b, 0)
	return b.String()
}

func (t *Tree) pretty(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	if len(t.Children) == 1 && t.Children[0].IsToken() {
		fmt.Fprintf(b, "%s%s\t%s\n", indent, t.Label, t.Children[0].Token.Text())
		return
	}
	fmt.Fprintf(b, "%s%s\n", indent, t.Label)
	for _, child := range t.Children {
		if child.IsToken() {
			fmt.Fprintf(b, "%s  %s\n", indent, child.Token.Text())
			continue
		}
		child.Tree.pretty(b, depth+1)
	}
}

func (t *Tree) String() string {
	var parts []string
	for _, child := range t.Children {
		if child.IsToken() {
			parts = append(parts, fmt.Sprintf("%q", child.Token.Text()))
			continue
		}
		parts = append(parts, child.Tree.String())
	}
	return fmt.Sprintf("%s(%s)", t.Label, strings.Join(parts, ", "))
}
