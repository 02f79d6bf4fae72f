package ast

import (
	"fmt"
	"strings"

	"github.com/gala-lang/gala/internal/lexer/token"
	"github.com/gala-lang/gala/internal/parsetree"
)

const (
	declGrammar     = `decl: use_decl | fn_decl | type_decl`
	functionGrammar = `fn_decl: "fn" name "(" fn_args ")" type_annot? "=" body`
)

// NewDecl resolves a decl production. Only functions are built, use and type
// declarations are out of scope.
func NewDecl(tree *parsetree.Tree) (Result, error) {
	if err := expectLabel(tree, "decl"); err != nil {
		return Result{}, err
	}
	child, err := soleSubtree(tree)
	if err != nil {
		return Result{}, err
	}

	switch child.Label {
	case "fn_decl":
		fn, err := NewFunction(child)
		if err != nil {
			return Result{}, err
		}
		return resolved(fn, child), nil
	case "use_decl", "type_decl":
		return Result{Resolution: OUT_OF_SCOPE, Label: child.Label, Pos: treePos(child)}, nil
	default:
		return Result{}, &ShapeError{Expected: "use_decl, fn_decl or type_decl", Got: child.Label, Pos: treePos(child)}
	}
}

type Function struct {
	Name    *token.Token
	Params  []*Param
	RetType *TypeAnnot
	Body    *Body
}

func NewFunction(tree *parsetree.Tree) (*Function, error) {
	if err := expectLabel(tree, "fn_decl"); err != nil {
		return nil, err
	}
	children, err := subtrees(tree)
	if err != nil {
		return nil, err
	}
	if len(children) != 3 && len(children) != 4 {
		return nil, arityError(tree, "name, arguments, optional type annotation and body")
	}

	fn := new(Function)
	fn.Name, err = newName(children[0])
	if err != nil {
		return nil, err
	}
	fn.Params, err = NewParams(children[1])
	if err != nil {
		return nil, err
	}
	if len(children) == 4 {
		fn.RetType, err = NewTypeAnnot(children[2])
		if err != nil {
			return nil, err
		}
	}
	fn.Body, err = NewBody(children[len(children)-1])
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (fn *Function) Kind() NodeKind  { return KIND_FN_DECL }
func (fn *Function) Pos() token.Pos  { return fn.Name.Pos }
func (fn *Function) NameStr() string { return fn.Name.Text() }

func (fn *Function) String() string {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = param.String()
	}
	ret := ""
	if fn.RetType != nil {
		ret = ": " + fn.RetType.String()
	}
	return fmt.Sprintf("Function(%s(%s)%s, %s)", fn.NameStr(), strings.Join(params, ", "), ret, fn.Body)
}

func (fn *Function) astNode()  {}
func (fn *Function) declNode() {}

func newName(tree *parsetree.Tree) (*token.Token, error) {
	if err := expectLabel(tree, "name"); err != nil {
		return nil, err
	}
	return soleToken(tree)
}

// Param is a function parameter. Parameters are built but not lowered.
type Param struct {
	Name *token.Token
	Type *TypeAnnot
}

// NewParams builds the parameters of an fn_args production.
func NewParams(tree *parsetree.Tree) ([]*Param, error) {
	if err := expectLabel(tree, "fn_args"); err != nil {
		return nil, err
	}
	children, err := subtrees(tree)
	if err != nil {
		return nil, err
	}
	if len(children)%2 != 0 {
		return nil, arityError(tree, "name and type annotation pairs")
	}

	params := make([]*Param, 0, len(children)/2)
	for i := 0; i < len(children); i += 2 {
		name, err := newName(children[i])
		if err != nil {
			return nil, err
		}
		annot, err := NewTypeAnnot(children[i+1])
		if err != nil {
			return nil, err
		}
		params = append(params, &Param{Name: name, Type: annot})
	}
	return params, nil
}

func (param *Param) Kind() NodeKind { return KIND_PARAM }
func (param *Param) Pos() token.Pos { return param.Name.Pos }
func (param *Param) String() string { return fmt.Sprintf("%s: %s", param.Name.Text(), param.Type) }
func (param *Param) astNode()       {}

// TypeAnnot is the text of a type annotation: "int", a type name or "()".
type TypeAnnot struct {
	Text string
}

func NewTypeAnnot(tree *parsetree.Tree) (*TypeAnnot, error) {
	if err := expectLabel(tree, "type_annot"); err != nil {
		return nil, err
	}
	literal, err := soleSubtree(tree)
	if err != nil {
		return nil, err
	}
	if err := expectLabel(literal, "type_literal"); err != nil {
		return nil, err
	}
	if len(literal.Children) != 1 {
		return nil, arityError(literal, "a single type")
	}

	child := literal.Children[0]
	if child.IsToken() {
		return &TypeAnnot{Text: child.Token.Text()}, nil
	}
	switch child.Tree.Label {
	case "name":
		name, err := newName(child.Tree)
		if err != nil {
			return nil, err
		}
		return &TypeAnnot{Text: name.Text()}, nil
	case "unit":
		return &TypeAnnot{Text: "()"}, nil
	default:
		return nil, &ShapeError{Expected: "int, name or unit", Got: child.Tree.Label, Pos: treePos(child.Tree)}
	}
}

func (annot *TypeAnnot) String() string { return annot.Text }
