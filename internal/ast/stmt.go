package ast

import (
	"fmt"
	"strings"

	"github.com/gala-lang/gala/internal/lexer/token"
	"github.com/gala-lang/gala/internal/parsetree"
)

const (
	bodyGrammar       = `body: _NL* _INDENT (stmt _NL*)+ _DEDENT`
	stmtGrammar       = `stmt: expr | assign_stmt | if_stmt | else_stmt | return_stmt`
	returnStmtGrammar = `return_stmt: "return" expr`
)

type Body struct {
	Stmts []Stmt
	pos   token.Pos
}

// NewBody builds every statement of a body. A statement that cannot be built
// is an *UnsupportedError, it is never dropped.
func NewBody(tree *parsetree.Tree) (*Body, error) {
	if err := expectLabel(tree, "body"); err != nil {
		return nil, err
	}
	children, err := subtrees(tree)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, arityError(tree, "at least one statement")
	}

	body := &Body{pos: treePos(tree)}
	for _, child := range children {
		result, err := NewStmt(child)
		if err != nil {
			return nil, err
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		body.Stmts = append(body.Stmts, result.Node.(Stmt))
	}
	return body, nil
}

func (body *Body) Kind() NodeKind { return KIND_BODY }
func (body *Body) Pos() token.Pos { return body.pos }

func (body *Body) String() string {
	stmts := make([]string, len(body.Stmts))
	for i, stmt := range body.Stmts {
		stmts[i] = stmt.String()
	}
	return fmt.Sprintf("Body(%s)", strings.Join(stmts, ", "))
}

func (body *Body) astNode() {}

// NewStmt resolves a stmt production. Only return statements are built.
func NewStmt(tree *parsetree.Tree) (Result, error) {
	if err := expectLabel(tree, "stmt"); err != nil {
		return Result{}, err
	}
	child, err := soleSubtree(tree)
	if err != nil {
		return Result{}, err
	}

	switch child.Label {
	case "return_stmt":
		ret, err := NewReturnStmt(child)
		if err != nil {
			return Result{}, err
		}
		return resolved(ret, child), nil
	case "expr", "assign_stmt", "if_stmt", "else_stmt":
		return unsupported(child), nil
	default:
		return Result{}, &ShapeError{Expected: "statement", Got: child.Label, Pos: treePos(child)}
	}
}

type ReturnStmt struct {
	Value Expr
	pos   token.Pos
}

func NewReturnStmt(tree *parsetree.Tree) (*ReturnStmt, error) {
	if err := expectLabel(tree, "return_stmt"); err != nil {
		return nil, err
	}
	child, err := soleSubtree(tree)
	if err != nil {
		return nil, err
	}
	value, err := buildExpr(child)
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{Value: value, pos: treePos(tree)}, nil
}

func (ret *ReturnStmt) Kind() NodeKind { return KIND_RETURN_STMT }
func (ret *ReturnStmt) Pos() token.Pos { return ret.pos }
func (ret *ReturnStmt) String() string { return fmt.Sprintf("ReturnStmt(%s)", ret.Value) }
func (ret *ReturnStmt) astNode()       {}
func (ret *ReturnStmt) stmtNode()      {}
