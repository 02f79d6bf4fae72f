package grammar

import (
	"fmt"
	"strings"
)

// Fragment is the piece of grammar an AST node type recognizes.
type Fragment struct {
	Owner string
	Text  string
}

// Registry keeps fragments in registration order. Registering the same
// owner twice with the same text is a no-op.
type Registry struct {
	fragments []Fragment
	owners    map[string]int
}

func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]int)}
}

func (r *Registry) Register(owner, text string) error {
	if owner == "" {
		return &ConfigError{Err: fmt.Errorf("fragment registered without an owner")}
	}
	if index, ok := r.owners[owner]; ok {
		if r.fragments[index].Text == text {
			return nil
		}
		return &ConfigError{Owner: owner, Err: fmt.Errorf("registered again with a different fragment")}
	}
	r.owners[owner] = len(r.fragments)
	r.fragments = append(r.fragments, Fragment{Owner: owner, Text: text})
	return nil
}

func (r *Registry) Fragments() []Fragment {
	fragments := make([]Fragment, len(r.fragments))
	copy(fragments, r.fragments)
	return fragments
}

type Assembled struct {
	Text    string
	Grammar *Grammar
}

// Assemble appends every fragment to the base document and compiles the
// result. Problems are reported against the fragment that caused them.
func Assemble(base string, fragments []Fragment) (*Assembled, error) {
	baseDoc, err := ParseDocument(base)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	sources := []Source{{Document: baseDoc}}
	for _, fragment := range fragments {
		if strings.TrimSpace(fragment.Text) == "" {
			return nil, &ConfigError{Owner: fragment.Owner, Err: fmt.Errorf("empty grammar fragment")}
		}
		doc, err := ParseDocument(fragment.Text)
		if err != nil {
			return nil, &ConfigError{Owner: fragment.Owner, Err: err}
		}
		if len(doc.Defs) == 0 {
			return nil, &ConfigError{Owner: fragment.Owner, Err: fmt.Errorf("fragment defines nothing")}
		}
		sources = append(sources, Source{Owner: fragment.Owner, Document: doc})
	}

	g, err := Compile(sources)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	text.WriteString(strings.TrimRight(base, " \t\r\n"))
	text.WriteString("\n")
	for _, fragment := range fragments {
		text.WriteString("\n")
		text.WriteString(strings.TrimRight(fragment.Text, " \t\r\n"))
		text.WriteString("\n")
	}

	return &Assembled{Text: text.String(), Grammar: g}, nil
}
