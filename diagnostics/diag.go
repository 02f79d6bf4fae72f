package diagnostics

import (
	"fmt"

	"github.com/gala-lang/gala/internal/lexer/token"
)

type Kind int

const (
	KIND_INTERNAL    Kind = iota
	KIND_CONFIG           // malformed or conflicting grammar
	KIND_LEXICAL          // indentation errors
	KIND_SYNTAX           // unexpected characters and tokens
	KIND_SHAPE            // parse tree shape not expected by an AST constructor
	KIND_UNSUPPORTED      // parsed but not buildable or lowerable
	KIND_TOOL             // external assembler or linker failure
	KIND_SEMANTIC         // symbol redefinitions
)

func (kind Kind) String() string {
	switch kind {
	case KIND_INTERNAL:
		return "internal error"
	case KIND_CONFIG:
		return "grammar error"
	case KIND_LEXICAL:
		return "indentation error"
	case KIND_SYNTAX:
		return "syntax error"
	case KIND_SHAPE:
		return "shape error"
	case KIND_UNSUPPORTED:
		return "unsupported"
	case KIND_TOOL:
		return "tool error"
	case KIND_SEMANTIC:
		return "semantic error"
	}
	return "unknown"
}

type Diag struct {
	Kind    Kind
	Pos     *token.Pos
	Message string
}

func (diag Diag) String() string {
	if diag.Pos == nil {
		return fmt.Sprintf("%s: %s", diag.Kind, diag.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", diag.Pos.Filename, diag.Pos.Line, diag.Pos.Column, diag.Kind, diag.Message)
}

// Diagnoser is implemented by every error type the compiler produces.
type Diagnoser interface {
	error
	Diag() Diag
}
