// Package ast defines the abstract syntax tree of gala, the grammar fragment
// each node type recognizes and the lowering of nodes to IR text.
package ast

import (
	"fmt"

	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/lexer/token"
)

type NodeKind int

const (
	DECL_START NodeKind = iota // declaration node start delimiter

	KIND_FN_DECL

	DECL_END // declaration node end delimiter

	STMT_START // statement node start delimiter

	KIND_RETURN_STMT

	STMT_END // statement node end delimiter

	EXPR_START // expression node start delimiter

	KIND_BINARY_EXPR
	KIND_NUMBER_EXPR
	KIND_STRING_EXPR

	EXPR_END // expression node end delimiter

	KIND_PROGRAM
	KIND_BODY
	KIND_OP
	KIND_PARAM
)

func (kind NodeKind) IsDecl() bool { return kind > DECL_START && kind < DECL_END }
func (kind NodeKind) IsStmt() bool { return kind > STMT_START && kind < STMT_END }
func (kind NodeKind) IsExpr() bool { return kind > EXPR_START && kind < EXPR_END }

func (kind NodeKind) String() string {
	switch kind {
	case KIND_FN_DECL:
		return "KIND_FN_DECL"
	case KIND_RETURN_STMT:
		return "KIND_RETURN_STMT"
	case KIND_BINARY_EXPR:
		return "KIND_BINARY_EXPR"
	case KIND_NUMBER_EXPR:
		return "KIND_NUMBER_EXPR"
	case KIND_STRING_EXPR:
		return "KIND_STRING_EXPR"
	case KIND_PROGRAM:
		return "KIND_PROGRAM"
	case KIND_BODY:
		return "KIND_BODY"
	case KIND_OP:
		return "KIND_OP"
	case KIND_PARAM:
		return "KIND_PARAM"
	default:
		return fmt.Sprintf("Unknown Node Kind: %d", int(kind))
	}
}

type Node interface {
	Kind() NodeKind
	Pos() token.Pos
	String() string
	astNode()
}

type Decl interface {
	Node
	declNode()
}

type Stmt interface {
	Node
	Lower(locals, globals *Scope) (string, error)
	stmtNode()
}

type Expr interface {
	Node
	Lower(locals, globals *Scope) (string, error)
	exprNode()
}

// Resolution tells what a constructor made of a parse tree.
type Resolution int

const (
	// RESOLVED means Result.Node holds the built node.
	RESOLVED Resolution = iota
	// OUT_OF_SCOPE is a recognized construct whose meaning is handled
	// elsewhere, like use and type declarations.
	OUT_OF_SCOPE
	// UNSUPPORTED is a construct the grammar accepts but no node exists for.
	UNSUPPORTED
)

func (resolution Resolution) String() string {
	switch resolution {
	case RESOLVED:
		return "resolved"
	case OUT_OF_SCOPE:
		return "out of scope"
	case UNSUPPORTED:
		return "unsupported"
	}
	return "unknown"
}

// Result is the outcome of a constructor that dispatches on the production
// label of its only child.
type Result struct {
	Resolution Resolution
	Node       Node
	// Label is the production the result was made from.
	Label string
	Pos   token.Pos
}

func (result Result) Resolved() bool { return result.Resolution == RESOLVED }

// Err returns an *UnsupportedError for unsupported results, nil otherwise.
func (result Result) Err() error {
	if result.Resolution != UNSUPPORTED {
		return nil
	}
	return &UnsupportedError{Label: result.Label, Pos: result.Pos}
}

func (result Result) String() string {
	if result.Resolution == RESOLVED {
		return result.Node.String()
	}
	return fmt.Sprintf("<%s %s>", result.Resolution, result.Label)
}

// ShapeError is a parse tree that does not have the shape a constructor
// expects, either because of its label or its children.
type ShapeError struct {
	Expected string
	Got      string
	Pos      token.Pos
	Message  string
}

func (err *ShapeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", err.Pos.Filename, err.Pos.Line, err.Pos.Column, err.message())
}

func (err *ShapeError) message() string {
	if err.Message != "" {
		return fmt.Sprintf("malformed %s: %s", err.Expected, err.Message)
	}
	return fmt.Sprintf("expected %s, got %s", err.Expected, err.Got)
}

func (err *ShapeError) Diag() diagnostics.Diag {
	pos := err.Pos
	return diagnostics.Diag{Kind: diagnostics.KIND_SHAPE, Pos: &pos, Message: err.message()}
}

// UnsupportedError is a construct that parses but cannot be built or lowered.
type UnsupportedError struct {
	Label string
	Pos   token.Pos
}

func (err *UnsupportedError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", err.Pos.Filename, err.Pos.Line, err.Pos.Column, err.message())
}

func (err *UnsupportedError) message() string {
	return fmt.Sprintf("unsupported construct %s", err.Label)
}

func (err *UnsupportedError) Diag() diagnostics.Diag {
	pos := err.Pos
	return diagnostics.Diag{Kind: diagnostics.KIND_UNSUPPORTED, Pos: &pos, Message: err.message()}
}

// RedefinitionError is a function defined twice in one program.
type RedefinitionError struct {
	Name string
	Pos  token.Pos
	Err  error
}

func (err *RedefinitionError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", err.Pos.Filename, err.Pos.Line, err.Pos.Column, err.message())
}

func (err *RedefinitionError) message() string {
	return fmt.Sprintf("function %q: %v", err.Name, err.Err)
}

func (err *RedefinitionError) Unwrap() error { return err.Err }

func (err *RedefinitionError) Diag() diagnostics.Diag {
	pos := err.Pos
	return diagnostics.Diag{Kind: diagnostics.KIND_SEMANTIC, Pos: &pos, Message: err.message()}
}
