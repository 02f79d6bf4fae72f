package ast

import (
	_ "embed"

	"github.com/gala-lang/gala/internal/grammar"
)

// BaseGrammar holds the tokens and the productions no node type is built
// from.
//
//go:embed base.lark
var BaseGrammar string

var fragments = []grammar.Fragment{
	{Owner: "Program", Text: programGrammar},
	{Owner: "Decl", Text: declGrammar},
	{Owner: "Function", Text: functionGrammar},
	{Owner: "Body", Text: bodyGrammar},
	{Owner: "Stmt", Text: stmtGrammar},
	{Owner: "ReturnStmt", Text: returnStmtGrammar},
	{Owner: "Expr", Text: exprGrammar},
	{Owner: "BinOp", Text: binOpGrammar},
	{Owner: "Literal", Text: literalGrammar},
	{Owner: "Number", Text: numberGrammar},
	{Owner: "String", Text: stringGrammar},
	{Owner: "Op", Text: opGrammar},
}

// Fragments returns the grammar fragment of every node type, in the order
// they are appended to BaseGrammar.
func Fragments() []grammar.Fragment {
	result := make([]grammar.Fragment, len(fragments))
	copy(result, fragments)
	return result
}
