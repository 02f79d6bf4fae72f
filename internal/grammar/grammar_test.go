package grammar

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func productionsByRule(g *Grammar) map[string][]string {
	result := make(map[string][]string)
	for _, prod := range g.Productions {
		result[prod.Rule] = append(result[prod.Rule], strings.Join(prod.Symbols, " "))
	}
	return result
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(`
// comment
?start: item
      | item "," start   // trailing comment
item: NAME
NAME: /[a-z]+/
_SEP: ";"
%ignore WS
%declare _INDENT _DEDENT
WS: /[ ]+/
`)
	if err != nil {
		t.Fatal(err)
	}

	expectedNames := []string{"start", "item", "NAME", "_SEP", "WS"}
	if !reflect.DeepEqual(doc.Names(), expectedNames) {
		t.Errorf("expected %v, got %v", expectedNames, doc.Names())
	}
	if !doc.Defs[0].Expand1 || doc.Defs[1].Expand1 {
		t.Errorf("expected only start to be a ?rule")
	}
	if !reflect.DeepEqual(doc.Ignore, []string{"WS"}) {
		t.Errorf("expected WS to be ignored, got %v", doc.Ignore)
	}
	if !reflect.DeepEqual(doc.Declare, []string{"_INDENT", "_DEDENT"}) {
		t.Errorf("expected declared block markers, got %v", doc.Declare)
	}
	if !doc.Defs[3].Literal || doc.Defs[3].Pattern != ";" {
		t.Errorf("expected _SEP to be the literal \";\", got %+v", doc.Defs[3])
	}
}

func TestPatternEscapes(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{`A: /a\/b/`, `a/b`},
		{`A: /\\/`, `\\`},
		{`A: /\d+\.\d*/`, `\d+\.\d*`},
		{`A: /if/i`, `(?i:if)`},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("TestPatternEscapes(%s)", test.text), func(t *testing.T) {
			doc, err := ParseDocument(test.text)
			if err != nil {
				t.Fatal(err)
			}
			if doc.Defs[0].Pattern != test.expected {
				t.Errorf("expected %q, got %q", test.expected, doc.Defs[0].Pattern)
			}
		})
	}
}

func TestDialectErrors(t *testing.T) {
	tests := []struct {
		text string
		line int
	}{
		{"start: A\nA: \"a", 2},
		{"start: A\n\nA: /a", 3},
		{"%include A", 1},
		{"start: Mixed", 1},
		{"start: A\nA: \"\\q\"", 2},
		{"start: (A", 1},
		{"start:", 1},
		{"start: A ]", 1},
		{"A: name", 1},
		{"A: /a/x", 1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("TestDialectErrors(%q)", test.text), func(t *testing.T) {
			_, err := ParseDocument(test.text)
			var dialectErr *DialectError
			if !errors.As(err, &dialectErr) {
				t.Fatalf("expected *DialectError, got %v", err)
			}
			if dialectErr.Line != test.line {
				t.Errorf("expected error on line %d, got %d (%s)", test.line, dialectErr.Line, dialectErr)
			}
		})
	}
}

func TestEBNFExpansion(t *testing.T) {
	g, err := Parse(`
start: a B? ("," a)*
a: "x" | "x"
B: "b"
`)
	if err != nil {
		t.Fatal(err)
	}

	expected := map[string][]string{
		"__start_plus_0": {`"," a`, `__start_plus_0 "," a`},
		"start":          {`a B __start_plus_0`, `a B`, `a __start_plus_0`, `a`},
		"a":              {`"x"`},
	}
	if got := productionsByRule(g); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	helper := g.Rules["__start_plus_0"]
	if !helper.Inline {
		t.Errorf("expected repetition helpers to be inlined")
	}
	if g.Start != "start" {
		t.Errorf("expected start rule, got %s", g.Start)
	}
}

func TestNestedRepetitionHelpersBelongToRule(t *testing.T) {
	g, err := Parse(`
_items: (A (B)+)+
A: "a"
B: "b"
`)
	if err != nil {
		t.Fatal(err)
	}
	for name := range g.Rules {
		if name == "_items" {
			continue
		}
		if !strings.HasPrefix(name, "__items_plus_") {
			t.Errorf("expected helper named after _items, got %s", name)
		}
	}
	if len(g.Rules) != 3 {
		t.Errorf("expected two helpers, got rules %v", g.RuleOrder)
	}
	if !g.Rules["_items"].Inline {
		t.Errorf("expected _items to be inlined")
	}
}

func TestTerminals(t *testing.T) {
	g, err := Parse(`
start: "fn" INT /[0-9]+/ "int" _NL
INT: "int"
_NL: /\n+/
UNUSED: "u"
%declare _INDENT
`)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		filtered bool
		literal  bool
		display  string
	}{
		{`"fn"`, true, true, `"fn"`},
		{"INT", false, true, "INT"},
		{"__ANON_0", false, false, "/[0-9]+/"},
		{"_NL", true, false, "_NL"},
		{"_INDENT", true, false, "_INDENT"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("TestTerminals(%s)", test.name), func(t *testing.T) {
			terminal, ok := g.Terminal(test.name)
			if !ok {
				t.Fatalf("expected terminal %s", test.name)
			}
			if terminal.Filtered != test.filtered {
				t.Errorf("expected filtered=%v", test.filtered)
			}
			if terminal.Literal != test.literal {
				t.Errorf("expected literal=%v", test.literal)
			}
			if terminal.Display() != test.display {
				t.Errorf("expected display %s, got %s", test.display, terminal.Display())
			}
		})
	}

	// the anonymous "int" reuses the named terminal
	expected := []string{`"fn" INT __ANON_0 INT _NL`}
	if got := productionsByRule(g)["start"]; !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	var lexable []string
	for _, terminal := range g.Lexable() {
		lexable = append(lexable, terminal.Name)
	}
	expectedLexable := []string{"INT", "_NL", `"fn"`, "__ANON_0"}
	if !reflect.DeepEqual(lexable, expectedLexable) {
		t.Errorf("expected lexable %v, got %v", expectedLexable, lexable)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		text    string
		message string
	}{
		{"start: missing", `undefined symbol "missing"`},
		{"start: A\nA: \"a\"\nA: \"b\"", `"A" is already defined`},
		{"start: A\nA: \"a\"\n%ignore WS", `ignored terminal "WS"`},
		{"start: A\nA: /a*/", "matches the empty string"},
		{"start: A\nA: /(a/", "terminal A"},
		{"A: \"a\"", "grammar has no rules"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("TestCompileErrors(%q)", test.text), func(t *testing.T) {
			_, err := Parse(test.text)
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if !strings.Contains(err.Error(), test.message) {
				t.Errorf("expected %q in %q", test.message, err.Error())
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Number", `number: /[0-9]+/`); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("Op", `op: "-"`); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("Number", `number: /[0-9]+/`); err != nil {
		t.Errorf("expected re-registration with the same text to be a no-op, got %v", err)
	}

	err := r.Register("Number", `number: /[0-9]/`)
	var configErr *ConfigError
	if !errors.As(err, &configErr) || configErr.Owner != "Number" {
		t.Errorf("expected a ConfigError owned by Number, got %v", err)
	}
	if err := r.Register("", `x: "x"`); err == nil {
		t.Errorf("expected an error for a fragment without owner")
	}

	fragments := r.Fragments()
	owners := []string{fragments[0].Owner, fragments[1].Owner}
	if !reflect.DeepEqual(owners, []string{"Number", "Op"}) {
		t.Errorf("expected registration order, got %v", owners)
	}
}

func TestAssemble(t *testing.T) {
	base := "start: expr\n\n"
	fragments := []Fragment{
		{Owner: "Expr", Text: "expr: number | expr op number\n"},
		{Owner: "Number", Text: "number: /[0-9]+/"},
		{Owner: "Op", Text: `op: "-"`},
	}

	first, err := Assemble(base, fragments)
	if err != nil {
		t.Fatal(err)
	}
	expected := "start: expr\n\nexpr: number | expr op number\n\nnumber: /[0-9]+/\n\nop: \"-\"\n"
	if first.Text != expected {
		t.Errorf("expected %q, got %q", expected, first.Text)
	}

	second, err := Assemble(base, fragments)
	if err != nil {
		t.Fatal(err)
	}
	if first.Text != second.Text {
		t.Errorf("expected byte-identical grammar text")
	}
	if !reflect.DeepEqual(productionsByRule(first.Grammar), productionsByRule(second.Grammar)) {
		t.Errorf("expected identical productions")
	}

	roundTrip, err := Parse(first.Text)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(productionsByRule(roundTrip), productionsByRule(first.Grammar)) {
		t.Errorf("expected assembled text to compile to the same productions")
	}
	if first.Grammar.Owner("number") != "Number" || first.Grammar.Owner("start") != "" {
		t.Errorf("expected owners to be kept")
	}
}

func TestAssembleErrors(t *testing.T) {
	base := "start: expr\n"
	tests := []struct {
		fragments []Fragment
		owner     string
	}{
		{[]Fragment{{Owner: "Expr", Text: "  \n"}}, "Expr"},
		{[]Fragment{{Owner: "Expr", Text: "// nothing\n"}}, "Expr"},
		{[]Fragment{{Owner: "Expr", Text: "expr: (number"}}, "Expr"},
		{[]Fragment{{Owner: "Expr", Text: "expr: number"}}, "Expr"},
		{[]Fragment{{Owner: "Expr", Text: "expr: \"1\""}, {Owner: "Other", Text: "expr: \"2\""}}, "Other"},
		{[]Fragment{{Owner: "Start", Text: "start: \"1\""}}, "Start"},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("TestAssembleErrors(%d)", i), func(t *testing.T) {
			_, err := Assemble(base, test.fragments)
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if configErr.Owner != test.owner {
				t.Errorf("expected owner %s, got %q (%v)", test.owner, configErr.Owner, err)
			}
		})
	}
}
