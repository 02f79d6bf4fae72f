// Package lalr builds LALR(1) parse tables from a compiled grammar and drives
// them over a token stream, shaping the result into a parse tree.
package lalr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gala-lang/gala/internal/grammar"
	"github.com/gala-lang/gala/internal/lexer/token"
)

// lookahead placeholder used while discovering propagated lookaheads
const propagate = "#"

type ActionKind int

const (
	ACTION_SHIFT ActionKind = iota
	ACTION_REDUCE
	ACTION_ACCEPT
)

type Action struct {
	Kind ActionKind
	// Target is the next state of a shift or the production of a reduce.
	Target int
}

func (action Action) String() string {
	switch action.Kind {
	case ACTION_SHIFT:
		return fmt.Sprintf("shift %d", action.Target)
	case ACTION_REDUCE:
		return fmt.Sprintf("reduce %d", action.Target)
	default:
		return "accept"
	}
}

// Conflict is a shift/reduce conflict that was resolved as a shift.
type Conflict struct {
	State      int
	Terminal   string
	Production *grammar.Production
}

func (conflict Conflict) String() string {
	return fmt.Sprintf("state %d: shift/reduce on %s, kept shift over %s", conflict.State, conflict.Terminal, conflict.Production)
}

type Table struct {
	Grammar     *grammar.Grammar
	Productions []*grammar.Production
	Actions     []map[string]Action
	Gotos       []map[string]int
	Conflicts   []Conflict
}

type item struct {
	prod, dot int
}

type state struct {
	kernel []item
	key    string
	next   map[string]int
	order  []string
}

type builder struct {
	g     *grammar.Grammar
	prods []*grammar.Production
	byLHS map[string][]int

	nullable map[string]bool
	first    map[string]map[string]bool

	states []*state
	index  map[string]int
}

// Build computes the LALR(1) table of g. Shift/reduce conflicts are resolved
// as shifts and recorded on the table; a reduce/reduce conflict is a
// grammar.ConfigError owned by whoever contributed the conflicting rule.
func Build(g *grammar.Grammar) (*Table, error) {
	b := &builder{
		g:     g,
		byLHS: make(map[string][]int),
		index: make(map[string]int),
	}

	b.prods = append(b.prods, &grammar.Production{
		Index:   0,
		Rule:    grammar.AUGMENTED_START,
		Symbols: []string{g.Start},
	})
	for _, prod := range g.Productions {
		b.prods = append(b.prods, &grammar.Production{
			Index:   len(b.prods),
			Rule:    prod.Rule,
			Symbols: prod.Symbols,
		})
	}
	for i, prod := range b.prods {
		b.byLHS[prod.Rule] = append(b.byLHS[prod.Rule], i)
	}

	b.computeFirst()
	b.buildStates()
	lookaheads := b.computeLookaheads()
	return b.buildTable(lookaheads)
}

func (b *builder) isTerminal(sym string) bool {
	return sym == string(token.EOF) || sym == propagate || b.g.IsTerminal(sym)
}

func (b *builder) computeFirst() {
	b.nullable = make(map[string]bool)
	b.first = make(map[string]map[string]bool)
	for _, prod := range b.prods {
		if b.first[prod.Rule] == nil {
			b.first[prod.Rule] = make(map[string]bool)
		}
	}

	for changed := true; changed; {
		changed = false
		for _, prod := range b.prods {
			set := b.first[prod.Rule]
			allNullable := true
			for _, sym := range prod.Symbols {
				if b.isTerminal(sym) {
					if !set[sym] {
						set[sym] = true
						changed = true
					}
					allNullable = false
					break
				}
				for t := range b.first[sym] {
					if !set[t] {
						set[t] = true
						changed = true
					}
				}
				if !b.nullable[sym] {
					allNullable = false
					break
				}
			}
			if allNullable && !b.nullable[prod.Rule] {
				b.nullable[prod.Rule] = true
				changed = true
			}
		}
	}
}

// firstOf returns FIRST(symbols lookahead).
func (b *builder) firstOf(symbols []string, lookahead string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			result = append(result, t)
		}
	}

	for _, sym := range symbols {
		if b.isTerminal(sym) {
			add(sym)
			return result
		}
		for _, t := range sortedKeys(b.first[sym]) {
			add(t)
		}
		if !b.nullable[sym] {
			return result
		}
	}
	add(lookahead)
	return result
}

func (b *builder) symbolAfterDot(it item) (string, bool) {
	symbols := b.prods[it.prod].Symbols
	if it.dot >= len(symbols) {
		return "", false
	}
	return symbols[it.dot], true
}

func (b *builder) closure0(kernel []item) []item {
	items := append([]item{}, kernel...)
	seen := make(map[item]bool, len(kernel))
	for _, it := range kernel {
		seen[it] = true
	}
	for i := 0; i < len(items); i++ {
		sym, ok := b.symbolAfterDot(items[i])
		if !ok || b.isTerminal(sym) {
			continue
		}
		for _, p := range b.byLHS[sym] {
			it := item{prod: p}
			if !seen[it] {
				seen[it] = true
				items = append(items, it)
			}
		}
	}
	return items
}

func kernelKey(kernel []item) string {
	parts := make([]string, len(kernel))
	for i, it := range kernel {
		parts[i] = fmt.Sprintf("%d.%d", it.prod, it.dot)
	}
	return strings.Join(parts, ",")
}

func (b *builder) addState(kernel []item) int {
	sort.Slice(kernel, func(i, j int) bool {
		if kernel[i].prod != kernel[j].prod {
			return kernel[i].prod < kernel[j].prod
		}
		return kernel[i].dot < kernel[j].dot
	})
	key := kernelKey(kernel)
	if index, ok := b.index[key]; ok {
		return index
	}
	index := len(b.states)
	b.states = append(b.states, &state{kernel: kernel, key: key, next: make(map[string]int)})
	b.index[key] = index
	return index
}

// buildStates computes the LR(0) collection. States are numbered in the
// order they are discovered, so numbering only depends on the grammar.
func (b *builder) buildStates() {
	b.addState([]item{{prod: 0}})
	for i := 0; i < len(b.states); i++ {
		st := b.states[i]
		gotos := make(map[string][]item)
		var order []string
		for _, it := range b.closure0(st.kernel) {
			sym, ok := b.symbolAfterDot(it)
			if !ok {
				continue
			}
			if _, ok := gotos[sym]; !ok {
				order = append(order, sym)
			}
			gotos[sym] = append(gotos[sym], item{prod: it.prod, dot: it.dot + 1})
		}
		for _, sym := range order {
			st.next[sym] = b.addState(gotos[sym])
		}
		st.order = order
	}
}

type lr1item struct {
	item
	lookahead string
}

func (b *builder) closure1(kernel []lr1item) []lr1item {
	items := append([]lr1item{}, kernel...)
	seen := make(map[lr1item]bool, len(kernel))
	for _, it := range kernel {
		seen[it] = true
	}
	for i := 0; i < len(items); i++ {
		it := items[i]
		sym, ok := b.symbolAfterDot(it.item)
		if !ok || b.isTerminal(sym) {
			continue
		}
		rest := b.prods[it.prod].Symbols[it.dot+1:]
		for _, la := range b.firstOf(rest, it.lookahead) {
			for _, p := range b.byLHS[sym] {
				next := lr1item{item: item{prod: p}, lookahead: la}
				if !seen[next] {
					seen[next] = true
					items = append(items, next)
				}
			}
		}
	}
	return items
}

type kernelRef struct {
	state int
	item  item
}

// computeLookaheads finds the lookaheads of every kernel item: spontaneous
// ones first, then propagated until nothing changes.
func (b *builder) computeLookaheads() map[kernelRef]map[string]bool {
	lookaheads := make(map[kernelRef]map[string]bool)
	propagates := make(map[kernelRef][]kernelRef)
	var refs []kernelRef

	for s, st := range b.states {
		for _, k := range st.kernel {
			ref := kernelRef{state: s, item: k}
			refs = append(refs, ref)
			lookaheads[ref] = make(map[string]bool)
		}
	}
	lookaheads[kernelRef{state: 0, item: item{prod: 0}}][string(token.EOF)] = true

	for s, st := range b.states {
		for _, k := range st.kernel {
			from := kernelRef{state: s, item: k}
			for _, it := range b.closure1([]lr1item{{item: k, lookahead: propagate}}) {
				sym, ok := b.symbolAfterDot(it.item)
				if !ok {
					continue
				}
				to := kernelRef{state: st.next[sym], item: item{prod: it.prod, dot: it.dot + 1}}
				if it.lookahead == propagate {
					propagates[from] = append(propagates[from], to)
				} else {
					lookaheads[to][it.lookahead] = true
				}
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, from := range refs {
			for _, to := range propagates[from] {
				for la := range lookaheads[from] {
					if !lookaheads[to][la] {
						lookaheads[to][la] = true
						changed = true
					}
				}
			}
		}
	}
	return lookaheads
}

func (b *builder) buildTable(lookaheads map[kernelRef]map[string]bool) (*Table, error) {
	table := &Table{
		Grammar:     b.g,
		Productions: b.prods,
		Actions:     make([]map[string]Action, len(b.states)),
		Gotos:       make([]map[string]int, len(b.states)),
	}

	for s, st := range b.states {
		actions := make(map[string]Action)
		gotos := make(map[string]int)
		for _, sym := range st.order {
			if b.isTerminal(sym) {
				actions[sym] = Action{Kind: ACTION_SHIFT, Target: st.next[sym]}
			} else {
				gotos[sym] = st.next[sym]
			}
		}

		var kernel []lr1item
		for _, k := range st.kernel {
			for _, la := range sortedKeys(lookaheads[kernelRef{state: s, item: k}]) {
				kernel = append(kernel, lr1item{item: k, lookahead: la})
			}
		}

		for _, it := range b.closure1(kernel) {
			if _, ok := b.symbolAfterDot(it.item); ok {
				continue
			}
			if it.prod == 0 {
				actions[string(token.EOF)] = Action{Kind: ACTION_ACCEPT}
				continue
			}

			reduce := Action{Kind: ACTION_REDUCE, Target: it.prod}
			existing, ok := actions[it.lookahead]
			switch {
			case !ok:
				actions[it.lookahead] = reduce
			case existing == reduce:
			case existing.Kind == ACTION_SHIFT:
				table.Conflicts = append(table.Conflicts, Conflict{
					State:      s,
					Terminal:   it.lookahead,
					Production: b.prods[it.prod],
				})
			case existing.Kind == ACTION_REDUCE:
				return nil, b.reduceConflict(it.lookahead, b.prods[existing.Target], b.prods[it.prod])
			}
		}

		table.Actions[s] = actions
		table.Gotos[s] = gotos
	}
	return table, nil
}

// ConflictError is a reduce/reduce conflict.
type ConflictError struct {
	Terminal string
	First    *grammar.Production
	Second   *grammar.Production
}

func (err *ConflictError) Error() string {
	return fmt.Sprintf("reduce/reduce conflict on %s between %q and %q", err.Terminal, err.First, err.Second)
}

func (b *builder) reduceConflict(terminal string, first, second *grammar.Production) error {
	return &grammar.ConfigError{
		Owner: b.g.Owner(second.Rule),
		Err:   &ConflictError{Terminal: terminal, First: first, Second: second},
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NumStates returns the number of parser states.
func (table *Table) NumStates() int { return len(table.Actions) }
