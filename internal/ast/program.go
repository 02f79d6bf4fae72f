package ast

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gala-lang/gala/internal/lexer/token"
	"github.com/gala-lang/gala/internal/parsetree"
)

const programGrammar = `program: (decl _NL*)+`

type Loc struct {
	Name string
	Dir  string
	Path string
}

// NewLoc is the location of source text that does not come from a file.
func NewLoc(name string) *Loc {
	return &Loc{Name: name}
}

func LocFromPath(fullPath string) (*Loc, error) {
	loc := new(Loc)
	loc.Path = fullPath

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected a source file", fullPath)
	}

	loc.Name = filepath.Base(fullPath)
	loc.Dir = filepath.Dir(fullPath)
	return loc, nil
}

func (l Loc) String() string {
	return fmt.Sprintf("Name: %s | Dir: %s | Path: %s", l.Name, l.Dir, l.Path)
}

// Program is one compilation unit. Declarations that are out of scope stay
// in Decls and are skipped when lowering.
type Program struct {
	Loc   *Loc
	Decls []Result
}

func NewProgram(tree *parsetree.Tree) (*Program, error) {
	if err := expectLabel(tree, "program"); err != nil {
		return nil, err
	}
	children, err := subtrees(tree)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, arityError(tree, "at least one declaration")
	}

	program := new(Program)
	for _, child := range children {
		decl, err := NewDecl(child)
		if err != nil {
			return nil, err
		}
		if err := decl.Err(); err != nil {
			return nil, err
		}
		program.Decls = append(program.Decls, decl)
	}
	return program, nil
}

// Functions returns the declarations that were built into functions.
func (program *Program) Functions() []*Function {
	var functions []*Function
	for _, decl := range program.Decls {
		if fn, ok := decl.Node.(*Function); ok && decl.Resolved() {
			functions = append(functions, fn)
		}
	}
	return functions
}

func (program *Program) Kind() NodeKind { return KIND_PROGRAM }

func (program *Program) Pos() token.Pos {
	if len(program.Decls) == 0 {
		return token.Pos{}
	}
	return program.Decls[0].Pos
}

func (program *Program) String() string {
	decls := make([]string, len(program.Decls))
	for i, decl := range program.Decls {
		decls[i] = decl.String()
	}
	return fmt.Sprintf("Program(%s)", strings.Join(decls, ", "))
}

func (program *Program) astNode() {}
