package lexer

import (
	"bytes"
	"os"

	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/grammar"
	"github.com/gala-lang/gala/internal/lexer/token"
)

// Lexer splits source text into tokens of the terminals of a grammar. The
// longest match wins; on a tie literals beat patterns, then the terminal
// defined first wins.
type Lexer struct {
	Loc *ast.Loc

	terminals []*grammar.Terminal
	ignore    map[string]bool

	src    []byte
	offset int
	pos    token.Pos
}

func New(loc *ast.Loc, src []byte, g *grammar.Grammar) *Lexer {
	lexer := new(Lexer)

	lexer.Loc = loc
	lexer.terminals = g.Lexable()
	lexer.ignore = make(map[string]bool, len(g.Ignore))
	for _, name := range g.Ignore {
		lexer.ignore[name] = true
	}
	lexer.pos = token.NewPosition(loc.Name, 1, 1)
	lexer.src = src
	lexer.offset = 0

	return lexer
}

func NewFromFilePath(loc *ast.Loc, g *grammar.Grammar) (*Lexer, error) {
	src, err := os.ReadFile(loc.Path)
	if err != nil {
		return nil, err
	}
	l := New(loc, src, g)
	return l, nil
}

func (lex *Lexer) Filename() string { return lex.pos.Filename }

// Next returns the next significant token, token.EOF at the end of input.
func (lex *Lexer) Next() (*token.Token, error) {
	for {
		if lex.offset >= len(lex.src) {
			return token.New(nil, token.EOF, lex.pos), nil
		}

		terminal, length := lex.match()
		if terminal == nil {
			return nil, &UnexpectedCharError{Pos: lex.pos, Char: lex.src[lex.offset]}
		}

		lexeme := lex.src[lex.offset : lex.offset+length]
		tok := token.New(lexeme, token.Kind(terminal.Name), lex.pos)
		lex.pos.Advance(lexeme)
		lex.offset += length

		if lex.ignore[terminal.Name] {
			continue
		}
		return tok, nil
	}
}

// Tokenize returns every token of the source, the last one being token.EOF.
func (lex *Lexer) Tokenize() ([]*token.Token, error) {
	var tokens []*token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, nil
}

func (lex *Lexer) match() (*grammar.Terminal, int) {
	rest := lex.src[lex.offset:]

	var best *grammar.Terminal
	bestLength := 0
	for _, terminal := range lex.terminals {
		length := 0
		if terminal.Literal {
			if !bytes.HasPrefix(rest, []byte(terminal.Pattern)) {
				continue
			}
			length = len(terminal.Pattern)
		} else {
			loc := terminal.Regexp().FindIndex(rest)
			if loc == nil {
				continue
			}
			length = loc[1]
		}

		switch {
		case length > bestLength:
		case length == bestLength && best != nil && terminal.Literal && !best.Literal:
		default:
			continue
		}
		best = terminal
		bestLength = length
	}

	if bestLength == 0 {
		return nil, 0
	}
	return best, bestLength
}
