package token

import "fmt"

type Token struct {
	Lexeme []byte
	Kind   Kind
	Pos    Pos
}

func New(lexeme []byte, kind Kind, position Pos) *Token {
	return &Token{Lexeme: lexeme, Kind: kind, Pos: position}
}

func (token *Token) Text() string { return string(token.Lexeme) }

// End returns the position right after the last byte of the token.
func (token *Token) End() Pos {
	end := token.Pos
	end.Advance(token.Lexeme)
	return end
}

func (token *Token) String() string {
	return fmt.Sprintf("%q | %s | %s", string(token.Lexeme), token.Kind, token.Pos)
}
