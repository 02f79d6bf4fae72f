package token

// Kind is the name of the grammar terminal a token was matched by. Named
// terminals keep their grammar name (e.g. "_NL", "STAR"), anonymous string
// literals are named by their quoted text (e.g. "\"fn\"") and anonymous
// patterns get a generated "__ANON_<n>" name.
type Kind string

const (
	EOF     Kind = "$END"
	NEWLINE Kind = "_NL"
	INDENT  Kind = "_INDENT"
	DEDENT  Kind = "_DEDENT"
)

func (kind Kind) String() string { return string(kind) }
