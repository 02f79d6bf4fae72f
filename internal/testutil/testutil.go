// Package testutil holds helpers shared by the tests of packages built on
// top of the parser.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/parser"
)

const DefaultFilename = "test.gala"

func NewParser(t *testing.T) *parser.Parser {
	t.Helper()
	p, err := parser.Default()
	if err != nil {
		t.Fatalf("unable to build gala parser: %v", err)
	}
	return p
}

func ParseProgram(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	return NewParser(t).ParseProgram(ast.NewLoc(DefaultFilename), []byte(src))
}

// WriteSource writes src to dir/name and returns its path.
func WriteSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(src), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

// RequireTools skips the test unless every tool is found in PATH.
func RequireTools(t *testing.T, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s is not installed", tool)
		}
	}
}
