package lexer

import (
	"fmt"

	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/lexer/token"
)

type UnexpectedCharError struct {
	Pos  token.Pos
	Char byte
}

func (err *UnexpectedCharError) Error() string {
	return fmt.Sprintf("%s:%d:%d: invalid character %q", err.Pos.Filename, err.Pos.Line, err.Pos.Column, err.Char)
}

func (err *UnexpectedCharError) Diag() diagnostics.Diag {
	pos := err.Pos
	return diagnostics.Diag{
		Kind:    diagnostics.KIND_SYNTAX,
		Pos:     &pos,
		Message: fmt.Sprintf("invalid character %q", err.Char),
	}
}

// IndentError is indentation that is not a multiple of the indentation unit
// or a dedent that does not return to an enclosing block.
type IndentError struct {
	Pos     token.Pos
	Width   int
	Message string
}

func (err *IndentError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", err.Pos.Filename, err.Pos.Line, err.Pos.Column, err.Message)
}

func (err *IndentError) Diag() diagnostics.Diag {
	pos := err.Pos
	return diagnostics.Diag{Kind: diagnostics.KIND_LEXICAL, Pos: &pos, Message: err.Message}
}
