// Package grammar assembles and compiles the grammar the parser is built
// from: a base document plus one fragment per AST node type.
package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const AUGMENTED_START = "$start"

type Terminal struct {
	Name    string
	Pattern string
	Literal bool
	// Filtered terminals are matched but never appear in parse trees.
	Filtered bool
	// Declared terminals are produced by a token post-processor, not the lexer.
	Declared bool
	Owner    string

	re *regexp.Regexp
}

// Regexp returns the compiled, start-anchored pattern of a non-literal terminal.
func (terminal *Terminal) Regexp() *regexp.Regexp { return terminal.re }

func (terminal *Terminal) Display() string {
	switch {
	case strings.HasPrefix(terminal.Name, "__ANON_"):
		return "/" + terminal.Pattern + "/"
	default:
		return terminal.Name
	}
}

type Rule struct {
	Name string
	// Expand1 rules are replaced by their only child when they have one.
	Expand1 bool
	// Inline rules are spliced into their parent.
	Inline bool
	Owner  string
}

type Production struct {
	Index   int
	Rule    string
	Symbols []string
}

func (prod *Production) String() string {
	if len(prod.Symbols) == 0 {
		return fmt.Sprintf("%s: <empty>", prod.Rule)
	}
	return fmt.Sprintf("%s: %s", prod.Rule, strings.Join(prod.Symbols, " "))
}

// Grammar is a compiled grammar: plain productions, terminals and the rule
// options that shape parse trees.
type Grammar struct {
	Start       string
	Productions []*Production
	Terminals   []*Terminal
	Rules       map[string]*Rule
	RuleOrder   []string
	Ignore      []string

	terminals map[string]*Terminal
}

func (g *Grammar) Terminal(name string) (*Terminal, bool) {
	terminal, ok := g.terminals[name]
	return terminal, ok
}

func (g *Grammar) IsTerminal(name string) bool {
	_, ok := g.terminals[name]
	return ok
}

// Lexable returns the terminals the lexer has to recognize, in definition
// order: everything used by a production or ignored, minus declared ones.
func (g *Grammar) Lexable() []*Terminal {
	used := make(map[string]bool)
	for _, prod := range g.Productions {
		for _, sym := range prod.Symbols {
			used[sym] = true
		}
	}
	for _, name := range g.Ignore {
		used[name] = true
	}

	var lexable []*Terminal
	for _, terminal := range g.Terminals {
		if used[terminal.Name] && !terminal.Declared {
			lexable = append(lexable, terminal)
		}
	}
	return lexable
}

// Owner returns the owner of a rule or terminal; helper rules belong to the
// rule they were expanded from.
func (g *Grammar) Owner(name string) string {
	if rule, ok := g.Rules[name]; ok {
		return rule.Owner
	}
	if terminal, ok := g.terminals[name]; ok {
		return terminal.Owner
	}
	return ""
}

// Source is one document of a grammar together with whoever contributed it.
type Source struct {
	Owner    string
	Document *Document
}

// Parse compiles a single grammar document.
func Parse(text string) (*Grammar, error) {
	doc, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}
	return Compile([]Source{{Document: doc}})
}

type compiler struct {
	g       *Grammar
	sources []Source

	literals map[string]string // literal text -> terminal name
	patterns map[string]string // pattern -> terminal name
	anon     int
	helpers  int
}

func Compile(sources []Source) (*Grammar, error) {
	c := &compiler{
		g: &Grammar{
			Rules:     make(map[string]*Rule),
			terminals: make(map[string]*Terminal),
		},
		sources:  sources,
		literals: make(map[string]string),
		patterns: make(map[string]string),
	}

	err := c.collect()
	if err != nil {
		return nil, err
	}
	err = c.expand()
	if err != nil {
		return nil, err
	}
	err = c.validate()
	if err != nil {
		return nil, err
	}
	return c.g, nil
}

func (c *compiler) addTerminal(terminal *Terminal) {
	c.g.Terminals = append(c.g.Terminals, terminal)
	c.g.terminals[terminal.Name] = terminal
}

func (c *compiler) collect() error {
	defined := make(map[string]string)
	define := func(name, owner string, line int) error {
		if previous, ok := defined[name]; ok {
			err := fmt.Errorf("%q is already defined%s", name, by(previous))
			if line > 0 {
				err = fmt.Errorf("line %d: %w", line, err)
			}
			return &ConfigError{Owner: owner, Err: err}
		}
		defined[name] = owner
		return nil
	}

	for _, source := range c.sources {
		for _, def := range source.Document.Defs {
			if err := define(def.Name, source.Owner, def.Line); err != nil {
				return err
			}
			switch def.Kind {
			case DEF_TERMINAL:
				terminal := &Terminal{
					Name:     def.Name,
					Pattern:  def.Pattern,
					Literal:  def.Literal,
					Filtered: strings.HasPrefix(def.Name, "_"),
					Owner:    source.Owner,
				}
				c.addTerminal(terminal)
				if def.Literal {
					if _, ok := c.literals[def.Pattern]; !ok {
						c.literals[def.Pattern] = def.Name
					}
				} else if _, ok := c.patterns[def.Pattern]; !ok {
					c.patterns[def.Pattern] = def.Name
				}
			case DEF_RULE:
				rule := &Rule{
					Name:    def.Name,
					Expand1: def.Expand1,
					Inline:  strings.HasPrefix(def.Name, "_"),
					Owner:   source.Owner,
				}
				c.g.Rules[def.Name] = rule
				c.g.RuleOrder = append(c.g.RuleOrder, def.Name)
				if c.g.Start == "" || def.Name == "start" {
					c.g.Start = def.Name
				}
			}
		}

		c.g.Ignore = append(c.g.Ignore, source.Document.Ignore...)

		for _, name := range source.Document.Declare {
			if err := define(name, source.Owner, 0); err != nil {
				return err
			}
			c.addTerminal(&Terminal{
				Name:     name,
				Declared: true,
				Filtered: strings.HasPrefix(name, "_"),
				Owner:    source.Owner,
			})
		}
	}

	if c.g.Start == "" {
		return &ConfigError{Err: fmt.Errorf("grammar has no rules")}
	}
	return nil
}

func by(owner string) string {
	if owner == "" {
		return " by the base grammar"
	}
	return " by " + owner
}

func (c *compiler) expand() error {
	for _, source := range c.sources {
		for _, def := range source.Document.Defs {
			if def.Kind != DEF_RULE {
				continue
			}
			alternatives := c.alternatives(def.Name, source.Owner, def.body)
			c.addProductions(def.Name, alternatives)
		}
	}
	return nil
}

func (c *compiler) addProductions(rule string, alternatives [][]string) {
	seen := make(map[string]bool)
	for _, symbols := range alternatives {
		key := strings.Join(symbols, " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		c.g.Productions = append(c.g.Productions, &Production{
			Index:   len(c.g.Productions),
			Rule:    rule,
			Symbols: symbols,
		})
	}
}

func (c *compiler) alternatives(rule, owner string, e *expr) [][]string {
	switch e.kind {
	case EXPR_NAME:
		return [][]string{{e.value}}
	case EXPR_LITERAL:
		return [][]string{{c.literalTerminal(e.value, owner)}}
	case EXPR_PATTERN:
		return [][]string{{c.patternTerminal(e.value, owner)}}
	case EXPR_SEQ:
		result := [][]string{{}}
		for _, child := range e.children {
			suffixes := c.alternatives(rule, owner, child)
			var product [][]string
			for _, prefix := range result {
				for _, suffix := range suffixes {
					seq := make([]string, 0, len(prefix)+len(suffix))
					seq = append(seq, prefix...)
					seq = append(seq, suffix...)
					product = append(product, seq)
				}
			}
			result = product
		}
		return result
	case EXPR_ALT:
		var result [][]string
		for _, child := range e.children {
			result = append(result, c.alternatives(rule, owner, child)...)
		}
		return result
	case EXPR_OPTIONAL:
		return append(c.alternatives(rule, owner, e.children[0]), []string{})
	case EXPR_PLUS:
		return [][]string{{c.repetition(rule, owner, e.children[0])}}
	case EXPR_STAR:
		return [][]string{{c.repetition(rule, owner, e.children[0])}, {}}
	}
	panic(fmt.Sprintf("unknown grammar expression kind %d", e.kind))
}

// repetition creates a left-recursive helper rule matching e one or more
// times. Helpers start with "_" so they are spliced into their parent.
func (c *compiler) repetition(rule, owner string, e *expr) string {
	name := fmt.Sprintf("__%s_plus_%d", strings.TrimLeft(rule, "_"), c.helpers)
	c.helpers++
	c.g.Rules[name] = &Rule{Name: name, Inline: true, Owner: owner}
	c.g.RuleOrder = append(c.g.RuleOrder, name)

	var inner [][]string
	for _, alt := range c.alternatives(rule, owner, e) {
		// an empty repetition body would make the helper match forever
		if len(alt) > 0 {
			inner = append(inner, alt)
		}
	}
	alternatives := append([][]string{}, inner...)
	for _, alt := range inner {
		alternatives = append(alternatives, append([]string{name}, alt...))
	}
	c.addProductions(name, alternatives)
	return name
}

func (c *compiler) literalTerminal(value, owner string) string {
	if name, ok := c.literals[value]; ok {
		return name
	}
	name := strconv.Quote(value)
	c.literals[value] = name
	c.addTerminal(&Terminal{
		Name:     name,
		Pattern:  value,
		Literal:  true,
		Filtered: true,
		Owner:    owner,
	})
	return name
}

func (c *compiler) patternTerminal(pattern, owner string) string {
	if name, ok := c.patterns[pattern]; ok {
		return name
	}
	name := fmt.Sprintf("__ANON_%d", c.anon)
	c.anon++
	c.patterns[pattern] = name
	c.addTerminal(&Terminal{
		Name:    name,
		Pattern: pattern,
		Owner:   owner,
	})
	return name
}

func (c *compiler) validate() error {
	for _, prod := range c.g.Productions {
		for _, sym := range prod.Symbols {
			if _, ok := c.g.Rules[sym]; ok {
				continue
			}
			if _, ok := c.g.terminals[sym]; ok {
				continue
			}
			return &ConfigError{
				Owner: c.g.Rules[prod.Rule].Owner,
				Err:   fmt.Errorf("rule %q uses undefined symbol %q", prod.Rule, sym),
			}
		}
	}

	for _, name := range c.g.Ignore {
		if _, ok := c.g.terminals[name]; !ok {
			return &ConfigError{Err: fmt.Errorf("ignored terminal %q is not defined", name)}
		}
	}

	for _, terminal := range c.g.Terminals {
		if terminal.Literal || terminal.Declared {
			continue
		}
		re, err := regexp.Compile(`\A(?:` + terminal.Pattern + `)`)
		if err != nil {
			return &ConfigError{
				Owner: terminal.Owner,
				Err:   fmt.Errorf("terminal %s: %w", terminal.Name, err),
			}
		}
		re.Longest()
		if re.MatchString("") {
			return &ConfigError{
				Owner: terminal.Owner,
				Err:   fmt.Errorf("terminal %s matches the empty string", terminal.Name),
			}
		}
		terminal.re = re
	}
	return nil
}
