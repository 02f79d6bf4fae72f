package ast

import (
	"errors"
	"fmt"
	"strings"
)

// Lower is LowerWith a fresh globals scope.
func (program *Program) Lower() (string, error) {
	return program.LowerWith(NewGlobals())
}

// LowerWith lowers every function of the program in declaration order,
// separated by a blank line. All functions share globals.
func (program *Program) LowerWith(globals *Scope) (string, error) {
	var functions []string
	for _, fn := range program.Functions() {
		ir, err := fn.Lower(globals)
		if err != nil {
			return "", err
		}
		functions = append(functions, ir)
	}
	if len(functions) == 0 {
		return "", nil
	}
	return strings.Join(functions, "\n\n") + "\n", nil
}

// Lower declares the function in globals and emits its definition. Every
// function returns i32.
func (fn *Function) Lower(globals *Scope) (string, error) {
	err := globals.Insert(fn.NameStr(), fn)
	if err != nil {
		if errors.Is(err, ERR_SYMBOL_ALREADY_DEFINED_ON_SCOPE) {
			return "", &RedefinitionError{Name: fn.NameStr(), Pos: fn.Pos(), Err: err}
		}
		return "", err
	}

	body, err := fn.Body.Lower(NewLocals(globals), globals)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("define i32 @%s() {\n%s}", fn.NameStr(), body), nil
}

// Lower emits one indented line per statement.
func (body *Body) Lower(locals, globals *Scope) (string, error) {
	var b strings.Builder
	for _, stmt := range body.Stmts {
		ir, err := stmt.Lower(locals, globals)
		if err != nil {
			return "", err
		}
		b.WriteString("    ")
		b.WriteString(ir)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (ret *ReturnStmt) Lower(locals, globals *Scope) (string, error) {
	value, err := ret.Value.Lower(locals, globals)
	if err != nil {
		return "", err
	}
	return "ret i32 " + value, nil
}

// Lower splices the operands around the operator text, without any
// instruction selection.
func (binop *BinOp) Lower(locals, globals *Scope) (string, error) {
	left, err := binop.Left.Lower(locals, globals)
	if err != nil {
		return "", err
	}
	right, err := binop.Right.Lower(locals, globals)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", left, binop.Op.Lower(), right), nil
}

func (op *Op) Lower() string { return op.String() }

func (number *Number) Lower(locals, globals *Scope) (string, error) {
	return number.Text(), nil
}

func (str *String) Lower(locals, globals *Scope) (string, error) {
	return "", &UnsupportedError{Label: "string", Pos: str.Pos()}
}
