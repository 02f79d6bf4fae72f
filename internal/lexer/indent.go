package lexer

import (
	"bytes"
	"fmt"

	"github.com/gala-lang/gala/internal/lexer/token"
)

// Indenter turns newline tokens into explicit block markers. Every newline
// token is kept; it is followed by one INDENT when the next line is indented
// deeper than the current block, or by one DEDENT per block that is closed.
type Indenter struct {
	Newline token.Kind
	Indent  token.Kind
	Dedent  token.Kind

	// OpenParen and CloseParen are kinds between which newlines are dropped.
	OpenParen  []token.Kind
	CloseParen []token.Kind

	TabLen int
	Unit   int
}

func NewIndenter() *Indenter {
	return &Indenter{
		Newline: token.NEWLINE,
		Indent:  token.INDENT,
		Dedent:  token.DEDENT,
		TabLen:  4,
		Unit:    4,
	}
}

// Process returns a new token stream with block markers inserted. It keeps no
// state between calls.
func (ind *Indenter) Process(tokens []*token.Token) ([]*token.Token, error) {
	levels := []int{0}
	parenLevel := 0

	out := make([]*token.Token, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok.Kind == token.EOF:
			for len(levels) > 1 {
				levels = levels[:len(levels)-1]
				out = append(out, token.New(nil, ind.Dedent, tok.Pos))
			}
			out = append(out, tok)
			continue
		case ind.isKind(tok.Kind, ind.OpenParen):
			parenLevel++
		case ind.isKind(tok.Kind, ind.CloseParen):
			parenLevel--
		case tok.Kind == ind.Newline:
			if parenLevel > 0 {
				continue
			}
			out = append(out, tok)

			markers, err := ind.blockMarkers(tok, &levels)
			if err != nil {
				return nil, err
			}
			out = append(out, markers...)
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

func (ind *Indenter) blockMarkers(nl *token.Token, levels *[]int) ([]*token.Token, error) {
	lastLine := nl.Lexeme
	if i := bytes.LastIndexByte(lastLine, '\n'); i >= 0 {
		lastLine = lastLine[i+1:]
	}
	indentation := lastLine[:len(lastLine)-len(bytes.TrimLeft(lastLine, " \t"))]
	width := bytes.Count(indentation, []byte(" ")) + bytes.Count(indentation, []byte("\t"))*ind.TabLen

	pos := nl.End()
	pos.Column = len(indentation) + 1

	if width%ind.Unit != 0 {
		return nil, &IndentError{
			Pos:     pos,
			Width:   width,
			Message: fmt.Sprintf("indentation of %d columns is not a multiple of %d", width, ind.Unit),
		}
	}

	current := (*levels)[len(*levels)-1]
	if width > current {
		*levels = append(*levels, width)
		return []*token.Token{token.New(indentation, ind.Indent, pos)}, nil
	}

	var markers []*token.Token
	for width < (*levels)[len(*levels)-1] {
		*levels = (*levels)[:len(*levels)-1]
		markers = append(markers, token.New(nil, ind.Dedent, pos))
	}
	if width != (*levels)[len(*levels)-1] {
		return nil, &IndentError{
			Pos:     pos,
			Width:   width,
			Message: fmt.Sprintf("dedent to %d columns does not match any enclosing block", width),
		}
	}
	return markers, nil
}

func (ind *Indenter) isKind(kind token.Kind, kinds []token.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
