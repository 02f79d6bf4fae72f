package grammar

import (
	"fmt"
	"strings"
)

// The grammar dialect is a small subset of the lark grammar language:
//
//	?start: _NL* program          // "?" inlines the rule when it has one child
//	_helper: a | b                // "_" always inlines the rule into its parent
//	NAME: /[a-z]+/                // named terminals, pattern or literal
//	STAR: "*"
//	%ignore WS                    // skipped by the lexer
//	%declare _INDENT _DEDENT      // terminals produced outside of the lexer
//
// Rule bodies support alternatives (|), grouping (...), optionals [...] and
// x?, repetition x* and x+, anonymous "literals" and /patterns/. A line
// starting with | continues the previous definition.

type itemKind int

const (
	ITEM_EOF itemKind = iota
	ITEM_NEWLINE
	ITEM_RULE
	ITEM_TERMINAL
	ITEM_STRING
	ITEM_PATTERN
	ITEM_DIRECTIVE
	ITEM_COLON
	ITEM_PIPE
	ITEM_OPEN_PAREN
	ITEM_CLOSE_PAREN
	ITEM_OPEN_BRACKET
	ITEM_CLOSE_BRACKET
	ITEM_QUESTION
	ITEM_STAR
	ITEM_PLUS
)

func (kind itemKind) String() string {
	switch kind {
	case ITEM_EOF:
		return "end of document"
	case ITEM_NEWLINE:
		return "newline"
	case ITEM_RULE:
		return "rule name"
	case ITEM_TERMINAL:
		return "terminal name"
	case ITEM_STRING:
		return "string"
	case ITEM_PATTERN:
		return "pattern"
	case ITEM_DIRECTIVE:
		return "directive"
	case ITEM_COLON:
		return "':'"
	case ITEM_PIPE:
		return "'|'"
	case ITEM_OPEN_PAREN:
		return "'('"
	case ITEM_CLOSE_PAREN:
		return "')'"
	case ITEM_OPEN_BRACKET:
		return "'['"
	case ITEM_CLOSE_BRACKET:
		return "']'"
	case ITEM_QUESTION:
		return "'?'"
	case ITEM_STAR:
		return "'*'"
	case ITEM_PLUS:
		return "'+'"
	}
	return "unknown"
}

type item struct {
	kind  itemKind
	value string
	line  int
}

type scanner struct {
	src    string
	offset int
	line   int
}

func isLower(ch byte) bool { return ch >= 'a' && ch <= 'z' }
func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }
func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isNameChar(ch byte) bool {
	return isLower(ch) || isUpper(ch) || isDigit(ch) || ch == '_'
}

func (s *scanner) peekChar() byte {
	if s.offset >= len(s.src) {
		return 0
	}
	return s.src[s.offset]
}

func (s *scanner) scanAll() ([]item, error) {
	var items []item
	for {
		it, err := s.next()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		if it.kind == ITEM_EOF {
			return items, nil
		}
	}
}

func (s *scanner) next() (item, error) {
	for {
		ch := s.peekChar()
		if ch == ' ' || ch == '\t' || ch == '\r' {
			s.offset++
			continue
		}
		if ch == '/' && strings.HasPrefix(s.src[s.offset:], "//") {
			for s.offset < len(s.src) && s.src[s.offset] != '\n' {
				s.offset++
			}
			continue
		}
		break
	}

	if s.offset >= len(s.src) {
		return item{kind: ITEM_EOF, line: s.line}, nil
	}

	line := s.line
	ch := s.src[s.offset]
	switch {
	case ch == '\n':
		for s.offset < len(s.src) && strings.IndexByte("\n\r\t ", s.src[s.offset]) >= 0 {
			if s.src[s.offset] == '\n' {
				s.line++
			}
			s.offset++
		}
		return item{kind: ITEM_NEWLINE, line: line}, nil
	case ch == '"':
		return s.scanString()
	case ch == '/':
		return s.scanPattern()
	case ch == '%':
		s.offset++
		name := s.readName()
		if name == "" {
			return item{}, &DialectError{Line: line, Message: "expected directive name after '%'"}
		}
		return item{kind: ITEM_DIRECTIVE, value: name, line: line}, nil
	case isLower(ch) || isUpper(ch) || ch == '_':
		name := s.readName()
		trimmed := strings.TrimLeft(name, "_")
		if trimmed == "" {
			return item{}, &DialectError{Line: line, Message: fmt.Sprintf("invalid name %q", name)}
		}
		if strings.ToUpper(name) == name && isUpper(trimmed[0]) {
			return item{kind: ITEM_TERMINAL, value: name, line: line}, nil
		}
		if strings.ToLower(name) == name && isLower(trimmed[0]) {
			return item{kind: ITEM_RULE, value: name, line: line}, nil
		}
		return item{}, &DialectError{Line: line, Message: fmt.Sprintf("name %q mixes upper and lower case", name)}
	}

	s.offset++
	kinds := map[byte]itemKind{
		':': ITEM_COLON,
		'|': ITEM_PIPE,
		'(': ITEM_OPEN_PAREN,
		')': ITEM_CLOSE_PAREN,
		'[': ITEM_OPEN_BRACKET,
		']': ITEM_CLOSE_BRACKET,
		'?': ITEM_QUESTION,
		'*': ITEM_STAR,
		'+': ITEM_PLUS,
	}
	kind, ok := kinds[ch]
	if !ok {
		return item{}, &DialectError{Line: line, Message: fmt.Sprintf("unexpected character %q", ch)}
	}
	return item{kind: kind, value: string(ch), line: line}, nil
}

func (s *scanner) readName() string {
	start := s.offset
	for s.offset < len(s.src) && isNameChar(s.src[s.offset]) {
		s.offset++
	}
	return s.src[start:s.offset]
}

func (s *scanner) scanString() (item, error) {
	line := s.line
	s.offset++ // "

	var value strings.Builder
	for {
		if s.offset >= len(s.src) || s.src[s.offset] == '\n' {
			return item{}, &DialectError{Line: line, Message: "unterminated string"}
		}
		ch := s.src[s.offset]
		if ch == '"' {
			s.offset++
			break
		}
		if ch == '\\' && s.offset+1 < len(s.src) {
			s.offset++
			switch escaped := s.src[s.offset]; escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case '\\', '"':
				value.WriteByte(escaped)
			default:
				return item{}, &DialectError{Line: line, Message: fmt.Sprintf("invalid escape sequence \\%c", escaped)}
			}
			s.offset++
			continue
		}
		value.WriteByte(ch)
		s.offset++
	}

	if value.Len() == 0 {
		return item{}, &DialectError{Line: line, Message: "empty string literal"}
	}
	return item{kind: ITEM_STRING, value: value.String(), line: line}, nil
}

func (s *scanner) scanPattern() (item, error) {
	line := s.line
	s.offset++ // /

	var pattern strings.Builder
	for {
		if s.offset >= len(s.src) || s.src[s.offset] == '\n' {
			return item{}, &DialectError{Line: line, Message: "unterminated pattern"}
		}
		ch := s.src[s.offset]
		if ch == '/' {
			s.offset++
			break
		}
		if ch == '\\' && s.offset+1 < len(s.src) && s.src[s.offset+1] != '\n' {
			if s.src[s.offset+1] != '/' {
				pattern.WriteByte(ch)
			}
			pattern.WriteByte(s.src[s.offset+1])
			s.offset += 2
			continue
		}
		pattern.WriteByte(ch)
		s.offset++
	}

	// flags, only case insensitivity is understood
	flags := ""
	for s.offset < len(s.src) && isLower(s.src[s.offset]) {
		flags += string(s.src[s.offset])
		s.offset++
	}
	switch flags {
	case "":
	case "i":
		return item{kind: ITEM_PATTERN, value: "(?i:" + pattern.String() + ")", line: line}, nil
	default:
		return item{}, &DialectError{Line: line, Message: fmt.Sprintf("unknown pattern flags %q", flags)}
	}

	return item{kind: ITEM_PATTERN, value: pattern.String(), line: line}, nil
}

type exprKind int

const (
	EXPR_NAME exprKind = iota
	EXPR_LITERAL
	EXPR_PATTERN
	EXPR_SEQ
	EXPR_ALT
	EXPR_OPTIONAL
	EXPR_STAR
	EXPR_PLUS
)

// expr is a rule body before it is expanded into plain productions.
type expr struct {
	kind     exprKind
	value    string
	children []*expr
}

type DefKind int

const (
	DEF_RULE DefKind = iota
	DEF_TERMINAL
)

type Definition struct {
	Kind DefKind
	Name string
	Line int

	// rules
	Expand1 bool
	body    *expr

	// terminals
	Pattern string
	Literal bool
}

// Document is one parsed piece of grammar text.
type Document struct {
	Defs    []*Definition
	Ignore  []string
	Declare []string
}

// Names returns every rule and terminal name the document defines, in order.
func (doc *Document) Names() []string {
	names := make([]string, 0, len(doc.Defs))
	for _, def := range doc.Defs {
		names = append(names, def.Name)
	}
	return names
}

type docParser struct {
	items  []item
	offset int
	depth  int
}

func ParseDocument(text string) (*Document, error) {
	s := &scanner{src: text, line: 1}
	items, err := s.scanAll()
	if err != nil {
		return nil, err
	}

	p := &docParser{items: items}
	doc := &Document{}
	for {
		it := p.peek()
		switch it.kind {
		case ITEM_EOF:
			return doc, nil
		case ITEM_NEWLINE:
			p.skip()
		case ITEM_DIRECTIVE:
			err = p.parseDirective(doc)
		case ITEM_QUESTION, ITEM_RULE:
			err = p.parseRule(doc)
		case ITEM_TERMINAL:
			err = p.parseTerminal(doc)
		default:
			err = p.unexpected(it, "a definition")
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *docParser) peek() item { return p.items[p.offset] }

func (p *docParser) skip() {
	if p.items[p.offset].kind != ITEM_EOF {
		p.offset++
	}
}

// peekSignificant skips newlines inside brackets and newlines followed by a
// continuation '|'.
func (p *docParser) peekSignificant() item {
	for {
		it := p.peek()
		if it.kind != ITEM_NEWLINE {
			return it
		}
		next := p.items[p.offset+1]
		if p.depth > 0 || next.kind == ITEM_PIPE {
			p.offset++
			continue
		}
		return it
	}
}

func (p *docParser) expect(kind itemKind) (item, error) {
	it := p.peek()
	if it.kind != kind {
		return it, p.unexpected(it, kind.String())
	}
	p.skip()
	return it, nil
}

func (p *docParser) unexpected(it item, expected string) error {
	got := it.kind.String()
	if it.value != "" {
		got = fmt.Sprintf("%s %q", got, it.value)
	}
	return &DialectError{Line: it.line, Message: fmt.Sprintf("expected %s, got %s", expected, got)}
}

func (p *docParser) endOfDefinition() error {
	it := p.peek()
	if it.kind == ITEM_NEWLINE || it.kind == ITEM_EOF {
		p.skip()
		return nil
	}
	return p.unexpected(it, "end of line")
}

func (p *docParser) parseDirective(doc *Document) error {
	directive := p.peek()
	p.skip()

	var names []string
	for p.peek().kind == ITEM_TERMINAL {
		names = append(names, p.peek().value)
		p.skip()
	}
	if len(names) == 0 {
		return p.unexpected(p.peek(), "terminal name")
	}

	switch directive.value {
	case "ignore":
		doc.Ignore = append(doc.Ignore, names...)
	case "declare":
		doc.Declare = append(doc.Declare, names...)
	default:
		return &DialectError{Line: directive.line, Message: fmt.Sprintf("unknown directive %%%s", directive.value)}
	}
	return p.endOfDefinition()
}

func (p *docParser) parseTerminal(doc *Document) error {
	name := p.peek()
	p.skip()
	if _, err := p.expect(ITEM_COLON); err != nil {
		return err
	}

	def := &Definition{Kind: DEF_TERMINAL, Name: name.value, Line: name.line}
	value := p.peek()
	switch value.kind {
	case ITEM_STRING:
		def.Pattern = value.value
		def.Literal = true
	case ITEM_PATTERN:
		def.Pattern = value.value
	default:
		return p.unexpected(value, "string or pattern")
	}
	p.skip()

	doc.Defs = append(doc.Defs, def)
	return p.endOfDefinition()
}

func (p *docParser) parseRule(doc *Document) error {
	def := &Definition{Kind: DEF_RULE}
	if p.peek().kind == ITEM_QUESTION {
		def.Expand1 = true
		p.skip()
	}

	name, err := p.expect(ITEM_RULE)
	if err != nil {
		return err
	}
	def.Name = name.value
	def.Line = name.line

	if _, err := p.expect(ITEM_COLON); err != nil {
		return err
	}

	body, err := p.parseAlternatives()
	if err != nil {
		return err
	}
	def.body = body

	doc.Defs = append(doc.Defs, def)
	return p.endOfDefinition()
}

func (p *docParser) parseAlternatives() (*expr, error) {
	var alternatives []*expr
	for {
		seq, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, seq)

		if p.peekSignificant().kind != ITEM_PIPE {
			break
		}
		p.skip()
	}

	if len(alternatives) == 1 {
		return alternatives[0], nil
	}
	return &expr{kind: EXPR_ALT, children: alternatives}, nil
}

func (p *docParser) parseSequence() (*expr, error) {
	var items []*expr
	for {
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		if atom == nil {
			break
		}

		switch p.peek().kind {
		case ITEM_QUESTION:
			atom = &expr{kind: EXPR_OPTIONAL, children: []*expr{atom}}
			p.skip()
		case ITEM_STAR:
			atom = &expr{kind: EXPR_STAR, children: []*expr{atom}}
			p.skip()
		case ITEM_PLUS:
			atom = &expr{kind: EXPR_PLUS, children: []*expr{atom}}
			p.skip()
		}
		items = append(items, atom)
	}

	if len(items) == 0 {
		return nil, p.unexpected(p.peek(), "a symbol")
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &expr{kind: EXPR_SEQ, children: items}, nil
}

// parseAtom returns nil when the sequence ends.
func (p *docParser) parseAtom() (*expr, error) {
	it := p.peekSignificant()
	switch it.kind {
	case ITEM_RULE, ITEM_TERMINAL:
		p.skip()
		return &expr{kind: EXPR_NAME, value: it.value}, nil
	case ITEM_STRING:
		p.skip()
		return &expr{kind: EXPR_LITERAL, value: it.value}, nil
	case ITEM_PATTERN:
		p.skip()
		return &expr{kind: EXPR_PATTERN, value: it.value}, nil
	case ITEM_OPEN_PAREN, ITEM_OPEN_BRACKET:
		closing := ITEM_CLOSE_PAREN
		if it.kind == ITEM_OPEN_BRACKET {
			closing = ITEM_CLOSE_BRACKET
		}
		p.skip()
		p.depth++
		inner, err := p.parseAlternatives()
		if err != nil {
			return nil, err
		}
		p.peekSignificant()
		p.depth--
		if _, err := p.expect(closing); err != nil {
			return nil, err
		}
		if closing == ITEM_CLOSE_BRACKET {
			return &expr{kind: EXPR_OPTIONAL, children: []*expr{inner}}, nil
		}
		return inner, nil
	}
	return nil, nil
}
