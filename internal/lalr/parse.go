package lalr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/lexer/token"
	"github.com/gala-lang/gala/internal/parsetree"
)

// SyntaxError is a token the parser has no action for.
type SyntaxError struct {
	Pos      token.Pos
	Got      *token.Token
	Expected []string
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", err.Pos.Filename, err.Pos.Line, err.Pos.Column, err.message())
}

func (err *SyntaxError) message() string {
	got := fmt.Sprintf("%q", err.Got.Text())
	switch err.Got.Kind {
	case token.EOF:
		got = "end of input"
	case token.NEWLINE:
		got = "newline"
	case token.INDENT:
		got = "indentation"
	case token.DEDENT:
		got = "dedent"
	}
	return fmt.Sprintf("unexpected %s, expected one of: %s", got, strings.Join(err.Expected, ", "))
}

func (err *SyntaxError) Diag() diagnostics.Diag {
	pos := err.Pos
	return diagnostics.Diag{Kind: diagnostics.KIND_SYNTAX, Pos: &pos, Message: err.message()}
}

type frame struct {
	state int
	value parsetree.Child
}

// Parse runs the table over tokens, which must end with token.EOF, and
// returns the shaped parse tree. Rules starting with "_" are spliced into
// their parent, "?" rules with a single child are replaced by it and
// filtered terminals are dropped.
func (table *Table) Parse(tokens []*token.Token) (*parsetree.Tree, error) {
	stack := []frame{{state: 0}}
	i := 0
	for {
		tok := tokens[i]
		top := stack[len(stack)-1].state

		action, ok := table.Actions[top][string(tok.Kind)]
		if !ok {
			return nil, table.syntaxError(top, tok)
		}

		switch action.Kind {
		case ACTION_SHIFT:
			stack = append(stack, frame{state: action.Target, value: parsetree.TokenChild(tok)})
			if i < len(tokens)-1 {
				i++
			}
		case ACTION_REDUCE:
			prod := table.Productions[action.Target]
			n := len(prod.Symbols)
			values := make([]parsetree.Child, n)
			for j, f := range stack[len(stack)-n:] {
				values[j] = f.value
			}
			stack = stack[:len(stack)-n]

			below := stack[len(stack)-1].state
			next, ok := table.Gotos[below][prod.Rule]
			if !ok {
				return nil, fmt.Errorf("parser table has no goto from state %d on %s", below, prod.Rule)
			}
			stack = append(stack, frame{state: next, value: table.shape(prod.Rule, values)})
		case ACTION_ACCEPT:
			result := stack[len(stack)-1].value
			if result.IsToken() {
				return parsetree.New(table.Grammar.Start, result), nil
			}
			return result.Tree, nil
		}
	}
}

func (table *Table) shape(rule string, values []parsetree.Child) parsetree.Child {
	var children []parsetree.Child
	for _, value := range values {
		if value.IsToken() {
			terminal, ok := table.Grammar.Terminal(string(value.Token.Kind))
			if ok && terminal.Filtered {
				continue
			}
			children = append(children, value)
			continue
		}
		if r, ok := table.Grammar.Rules[value.Tree.Label]; ok && r.Inline {
			children = append(children, value.Tree.Children...)
			continue
		}
		children = append(children, value)
	}

	if r, ok := table.Grammar.Rules[rule]; ok && r.Expand1 && len(children) == 1 {
		return children[0]
	}
	return parsetree.TreeChild(parsetree.New(rule, children...))
}

func (table *Table) syntaxError(state int, tok *token.Token) *SyntaxError {
	var expected []string
	for name := range table.Actions[state] {
		if name == string(token.EOF) {
			expected = append(expected, "end of input")
			continue
		}
		if terminal, ok := table.Grammar.Terminal(name); ok {
			expected = append(expected, terminal.Display())
			continue
		}
		expected = append(expected, name)
	}
	sort.Strings(expected)
	return &SyntaxError{Pos: tok.Pos, Got: tok, Expected: expected}
}
