package ast

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ERR_SYMBOL_ALREADY_DEFINED_ON_SCOPE = errors.New("symbol already defined on scope")
	ERR_SYMBOL_NOT_FOUND_ON_SCOPE       = errors.New("symbol not found on scope")
)

// Scope is a lowering context. The globals of a program are the root scope,
// each function lowers its body against a fresh scope of locals.
type Scope struct {
	Parent *Scope
	Nodes  map[string]Node
}

func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, Nodes: make(map[string]Node)}
}

func NewGlobals() *Scope { return NewScope(nil) }

func NewLocals(globals *Scope) *Scope { return NewScope(globals) }

func (scope *Scope) Insert(name string, element Node) error {
	if _, ok := scope.Nodes[name]; ok {
		return ERR_SYMBOL_ALREADY_DEFINED_ON_SCOPE
	}
	scope.Nodes[name] = element
	return nil
}

func (scope *Scope) LookupCurrentScope(name string) (Node, error) {
	if node, ok := scope.Nodes[name]; ok {
		return node, nil
	}
	return nil, ERR_SYMBOL_NOT_FOUND_ON_SCOPE
}

func (scope *Scope) LookupAcrossScopes(name string) (Node, error) {
	if node, ok := scope.Nodes[name]; ok {
		return node, nil
	}
	if scope.Parent == nil {
		return nil, ERR_SYMBOL_NOT_FOUND_ON_SCOPE
	}
	return scope.Parent.LookupAcrossScopes(name)
}

// Names returns the names defined directly in the scope, sorted.
func (scope *Scope) Names() []string {
	names := make([]string, 0, len(scope.Nodes))
	for name := range scope.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (scope Scope) String() string {
	if scope.Parent == nil {
		return fmt.Sprintf("Scope:\nParent: nil\nCurrent: %v\n", scope.Names())
	}
	return fmt.Sprintf("Scope:\nParent: %v\nCurrent: %v\n", scope.Parent, scope.Names())
}
