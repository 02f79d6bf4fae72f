// Package parser turns gala source text into parse trees and ASTs. The
// grammar is assembled from the fragments of the ast package and compiled
// into LALR(1) tables once per Parser.
package parser

import (
	"fmt"
	"sync"

	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/grammar"
	"github.com/gala-lang/gala/internal/lalr"
	"github.com/gala-lang/gala/internal/lexer"
	"github.com/gala-lang/gala/internal/parsetree"
)

// Parser is safe for concurrent use: its grammar and tables are never
// modified after New.
type Parser struct {
	assembled *grammar.Assembled
	table     *lalr.Table
	indenter  *lexer.Indenter
}

func New() (*Parser, error) {
	return NewFromGrammar(ast.BaseGrammar, ast.Fragments())
}

// NewFromGrammar registers every fragment in order before assembling them
// onto base.
func NewFromGrammar(base string, fragments []grammar.Fragment) (*Parser, error) {
	registry := grammar.NewRegistry()
	for _, fragment := range fragments {
		err := registry.Register(fragment.Owner, fragment.Text)
		if err != nil {
			return nil, err
		}
	}

	assembled, err := grammar.Assemble(base, registry.Fragments())
	if err != nil {
		return nil, err
	}

	table, err := lalr.Build(assembled.Grammar)
	if err != nil {
		return nil, err
	}

	if config.DEV {
		fmt.Printf("[DEV MODE] grammar: %d productions, %d states, %d shift/reduce conflicts resolved as shift\n",
			len(table.Productions), table.NumStates(), len(table.Conflicts))
	}

	return &Parser{assembled: assembled, table: table, indenter: lexer.NewIndenter()}, nil
}

var (
	defaultOnce   sync.Once
	defaultParser *Parser
	defaultErr    error
)

// Default returns a Parser for the gala grammar, built on first use.
func Default() (*Parser, error) {
	defaultOnce.Do(func() {
		defaultParser, defaultErr = New()
	})
	return defaultParser, defaultErr
}

// GrammarText returns the assembled grammar document.
func (p *Parser) GrammarText() string { return p.assembled.Text }

func (p *Parser) Grammar() *grammar.Grammar { return p.assembled.Grammar }

func (p *Parser) Conflicts() []lalr.Conflict { return p.table.Conflicts }

func (p *Parser) NewLexer(loc *ast.Loc, src []byte) *lexer.Lexer {
	return lexer.New(loc, src, p.assembled.Grammar)
}

func (p *Parser) NewLexerFromFilePath(loc *ast.Loc) (*lexer.Lexer, error) {
	return lexer.NewFromFilePath(loc, p.assembled.Grammar)
}

// ParseTree lexes, inserts block markers and parses.
func (p *Parser) ParseTree(lex *lexer.Lexer) (*parsetree.Tree, error) {
	tokens, err := lex.Tokenize()
	if err != nil {
		return nil, err
	}
	tokens, err = p.indenter.Process(tokens)
	if err != nil {
		return nil, err
	}
	if config.DEBUG_MODE {
		for _, tok := range tokens {
			fmt.Printf("[DEBUG MODE] %s\n", tok)
		}
	}
	return p.table.Parse(tokens)
}

func (p *Parser) ParseFileAsProgram(lex *lexer.Lexer) (*ast.Program, error) {
	tree, err := p.ParseTree(lex)
	if err != nil {
		return nil, err
	}
	program, err := ast.NewProgram(tree)
	if err != nil {
		return nil, err
	}
	program.Loc = lex.Loc
	return program, nil
}

// ParseProgram parses source text that is already in memory.
func (p *Parser) ParseProgram(loc *ast.Loc, src []byte) (*ast.Program, error) {
	return p.ParseFileAsProgram(p.NewLexer(loc, src))
}
