package parsetree

import (
	"testing"

	"github.com/gala-lang/gala/internal/lexer/token"
)

func tok(kind, text string, line int) *token.Token {
	return token.New([]byte(text), token.Kind(kind), token.NewPosition("test.gala", 1, line))
}

func TestTreeEqualIgnoresPositions(t *testing.T) {
	a := New("expr", TreeChild(New("number", TokenChild(tok("NUMBER", "5", 1)))))
	b := New("expr", TreeChild(New("number", TokenChild(tok("NUMBER", "5", 7)))))
	if !a.Equal(b) {
		t.Errorf("expected %s to equal %s", a, b)
	}

	c := New("expr", TreeChild(New("number", TokenChild(tok("NUMBER", "6", 1)))))
	if a.Equal(c) {
		t.Errorf("expected %s to differ from %s", a, c)
	}
}

func TestTreePos(t *testing.T) {
	tree := New("body", TreeChild(New("stmt")), TreeChild(New("stmt", TokenChild(tok("NAME", "x", 3)))))
	pos, ok := tree.Pos()
	if !ok {
		t.Fatalf("expected a position")
	}
	if pos.Line != 3 {
		t.Errorf("expected line 3, got %d", pos.Line)
	}

	if _, ok := New("fn_args").Pos(); ok {
		t.Errorf("expected no position for an empty tree")
	}
}

func TestTreeString(t *testing.T) {
	tree := New("binop",
		TreeChild(New("number", TokenChild(tok("NUMBER", "1", 1)))),
		TreeChild(New("op", TokenChild(tok("STAR", "*", 1)))),
		TreeChild(New("number", TokenChild(tok("NUMBER", "2", 1)))),
	)
	expected := `binop(number("1"), op("*"), number("2"))`
	if tree.String() != expected {
		t.Errorf("expected %s, got %s", expected, tree.String())
	}
	if len(tree.Subtrees()) != 3 {
		t.Errorf("expected 3 subtrees, got %d", len(tree.Subtrees()))
	}
}
