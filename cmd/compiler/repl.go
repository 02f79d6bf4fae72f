package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/parser"
	"github.com/peterh/liner"
)

const (
	historyFile = "repl_history"
	promptMain  = "gala> "
	promptCont  = "....  "
)

const REPL_HELP = `Enter declarations; an empty line ends the entry.
Functions stay defined for the rest of the session.

  :tree     toggle printing the parse tree of every entry
  :defs     list the functions defined so far
  :reset    forget every function
  :grammar  print the assembled grammar
  :quit     leave the REPL
`

// session lowers entries against globals shared by the whole session.
type session struct {
	parser   *parser.Parser
	globals  *ast.Scope
	showTree bool
	entries  int
}

func newSession(p *parser.Parser) *session {
	return &session{parser: p, globals: ast.NewGlobals()}
}

// eval lowers src. Functions are only added to the session when the whole
// entry lowers.
func (s *session) eval(src string, w io.Writer) error {
	s.entries++
	loc := ast.NewLoc(fmt.Sprintf("<repl:%d>", s.entries))

	lex := s.parser.NewLexer(loc, []byte(src))
	tree, err := s.parser.ParseTree(lex)
	if err != nil {
		return err
	}
	if s.showTree {
		fmt.Fprint(w, tree.Pretty())
	}

	program, err := ast.NewProgram(tree)
	if err != nil {
		return err
	}
	program.Loc = loc

	scratch := ast.NewGlobals()
	for _, name := range s.globals.Names() {
		_ = scratch.Insert(name, s.globals.Nodes[name])
	}
	ir, err := program.LowerWith(scratch)
	if err != nil {
		return err
	}
	s.globals = scratch

	fmt.Fprint(w, ir)
	return nil
}

func (s *session) command(line string, w io.Writer) (exit bool) {
	switch strings.TrimSpace(line) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(w, REPL_HELP)
	case ":tree":
		s.showTree = !s.showTree
		fmt.Fprintf(w, "parse trees: %v\n", s.showTree)
	case ":defs":
		for _, name := range s.globals.Names() {
			fmt.Fprintf(w, "@%s\n", name)
		}
	case ":reset":
		s.globals = ast.NewGlobals()
	case ":grammar":
		fmt.Fprint(w, s.parser.GrammarText())
	default:
		fmt.Fprintf(w, "unknown command %s, try :help\n", line)
	}
	return false
}

func repl(p *parser.Parser, configDir string) {
	histPath := filepath.Join(configDir, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := newSession(p)
	collector := diagnostics.NewSilent()
	fmt.Print(REPL_HELP)

	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if s.command(src, os.Stdout) {
				break
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		err := s.eval(src, os.Stdout)
		if err != nil {
			collector.Report(err)
			fmt.Println(collector.Diags[len(collector.Diags)-1])
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
}

// readEntry reads lines until an empty one. Commands are a single line.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the current entry
			return "", true
		}

		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
