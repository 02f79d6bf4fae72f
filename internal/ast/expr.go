package ast

import (
	"fmt"
	"strconv"

	"github.com/gala-lang/gala/internal/lexer/token"
	"github.com/gala-lang/gala/internal/parsetree"
)

const (
	exprGrammar    = `expr: path | literal | binop | index_expr | call_expr | member_expr`
	binOpGrammar   = `binop: expr op expr`
	literalGrammar = `literal: number | string`
	numberGrammar  = `number: /[0-9]+(\.[0-9]*)?/`
	stringGrammar  = `string: /"([^"\\]|\\.)*"/`
	opGrammar      = `
op: EQ_EQ | LESS_EQ | STAR | MINUS
EQ_EQ: "=="
LESS_EQ: "<="
STAR: "*"
MINUS: "-"
`
)

// NewExpr resolves an expr production by the label of its only child.
func NewExpr(tree *parsetree.Tree) (Result, error) {
	if err := expectLabel(tree, "expr"); err != nil {
		return Result{}, err
	}
	child, err := soleSubtree(tree)
	if err != nil {
		return Result{}, err
	}

	switch child.Label {
	case "binop":
		binop, err := NewBinOp(child)
		if err != nil {
			return Result{}, err
		}
		return resolved(binop, child), nil
	case "literal":
		literal, err := NewLiteral(child)
		if err != nil {
			return Result{}, err
		}
		return resolved(literal, child), nil
	case "path", "index_expr", "call_expr", "member_expr":
		return unsupported(child), nil
	default:
		return Result{}, &ShapeError{Expected: "expression", Got: child.Label, Pos: treePos(child)}
	}
}

// buildExpr is NewExpr for parents that need an expression node.
func buildExpr(tree *parsetree.Tree) (Expr, error) {
	result, err := NewExpr(tree)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Node.(Expr), nil
}

type BinOp struct {
	Left  Expr
	Op    *Op
	Right Expr
}

func NewBinOp(tree *parsetree.Tree) (*BinOp, error) {
	if err := expectLabel(tree, "binop"); err != nil {
		return nil, err
	}
	children, err := subtrees(tree)
	if err != nil {
		return nil, err
	}
	if len(children) != 3 {
		return nil, arityError(tree, "left operand, operator and right operand")
	}

	binop := new(BinOp)
	binop.Left, err = buildExpr(children[0])
	if err != nil {
		return nil, err
	}
	binop.Op, err = NewOp(children[1])
	if err != nil {
		return nil, err
	}
	binop.Right, err = buildExpr(children[2])
	if err != nil {
		return nil, err
	}
	return binop, nil
}

func (binop *BinOp) Kind() NodeKind { return KIND_BINARY_EXPR }
func (binop *BinOp) Pos() token.Pos { return binop.Left.Pos() }

func (binop *BinOp) String() string {
	return fmt.Sprintf("BinOp(%s %s %s)", binop.Left, binop.Op, binop.Right)
}

func (binop *BinOp) astNode()  {}
func (binop *BinOp) exprNode() {}

// NewLiteral builds the Number or String of a literal production.
func NewLiteral(tree *parsetree.Tree) (Expr, error) {
	if err := expectLabel(tree, "literal"); err != nil {
		return nil, err
	}
	child, err := soleSubtree(tree)
	if err != nil {
		return nil, err
	}

	switch child.Label {
	case "number":
		number, err := NewNumber(child)
		if err != nil {
			return nil, err
		}
		return number, nil
	case "string":
		str, err := NewString(child)
		if err != nil {
			return nil, err
		}
		return str, nil
	default:
		return nil, &ShapeError{Expected: "number or string", Got: child.Label, Pos: treePos(child)}
	}
}

type Number struct {
	Lit   *token.Token
	Value float64
}

func NewNumber(tree *parsetree.Tree) (*Number, error) {
	if err := expectLabel(tree, "number"); err != nil {
		return nil, err
	}
	lit, err := soleToken(tree)
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseFloat(lit.Text(), 64)
	if err != nil {
		return nil, &ShapeError{Expected: "number", Got: "number", Pos: lit.Pos, Message: err.Error()}
	}
	return &Number{Lit: lit, Value: value}, nil
}

func (number *Number) Kind() NodeKind { return KIND_NUMBER_EXPR }
func (number *Number) Pos() token.Pos { return number.Lit.Pos }
func (number *Number) Text() string   { return number.Lit.Text() }
func (number *Number) String() string { return fmt.Sprintf("Number(%s)", number.Text()) }
func (number *Number) astNode()       {}
func (number *Number) exprNode()      {}

type String struct {
	Lit   *token.Token
	Value string
}

func NewString(tree *parsetree.Tree) (*String, error) {
	if err := expectLabel(tree, "string"); err != nil {
		return nil, err
	}
	lit, err := soleToken(tree)
	if err != nil {
		return nil, err
	}
	value, err := strconv.Unquote(lit.Text())
	if err != nil {
		return nil, &ShapeError{Expected: "string", Got: "string", Pos: lit.Pos, Message: fmt.Sprintf("invalid string literal %s", lit.Text())}
	}
	return &String{Lit: lit, Value: value}, nil
}

func (str *String) Kind() NodeKind { return KIND_STRING_EXPR }
func (str *String) Pos() token.Pos { return str.Lit.Pos }
func (str *String) String() string { return fmt.Sprintf("String(%s)", str.Lit.Text()) }
func (str *String) astNode()       {}
func (str *String) exprNode()      {}

// Op is one of the binary operators ==, <=, * and -.
type Op struct {
	Tok *token.Token
}

var opKinds = map[token.Kind]string{
	"EQ_EQ":   "==",
	"LESS_EQ": "<=",
	"STAR":    "*",
	"MINUS":   "-",
}

func NewOp(tree *parsetree.Tree) (*Op, error) {
	if err := expectLabel(tree, "op"); err != nil {
		return nil, err
	}
	tok, err := soleToken(tree)
	if err != nil {
		return nil, err
	}
	if _, ok := opKinds[tok.Kind]; !ok {
		return nil, &ShapeError{Expected: "operator", Got: string(tok.Kind), Pos: tok.Pos}
	}
	return &Op{Tok: tok}, nil
}

func (op *Op) Kind() NodeKind { return KIND_OP }
func (op *Op) Pos() token.Pos { return op.Tok.Pos }
func (op *Op) String() string { return opKinds[op.Tok.Kind] }
func (op *Op) astNode()       {}
