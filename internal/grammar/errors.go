package grammar

import (
	"fmt"

	"github.com/gala-lang/gala/diagnostics"
)

// DialectError is a malformed piece of grammar text.
type DialectError struct {
	Line    int
	Message string
}

func (err *DialectError) Error() string {
	return fmt.Sprintf("line %d: %s", err.Line, err.Message)
}

// ConfigError is a grammar that cannot be assembled or compiled. Owner names
// the AST node type whose fragment is responsible, empty for the base grammar.
type ConfigError struct {
	Owner string
	Err   error
}

func (err *ConfigError) Error() string {
	if err.Owner == "" {
		return fmt.Sprintf("base grammar: %v", err.Err)
	}
	return fmt.Sprintf("grammar fragment of %s: %v", err.Owner, err.Err)
}

func (err *ConfigError) Unwrap() error { return err.Err }

func (err *ConfigError) Diag() diagnostics.Diag {
	return diagnostics.Diag{Kind: diagnostics.KIND_CONFIG, Message: err.Error()}
}
