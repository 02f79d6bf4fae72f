package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/compiler"
	"github.com/gala-lang/gala/internal/testutil"
)

func newCompiler(t *testing.T, backend string) *compiler.Compiler {
	t.Helper()
	envs := config.DefaultEnvs()
	envs.BACKEND = backend
	return compiler.New(testutil.NewParser(t), envs, config.DEBUG)
}

func TestLowerGolden(t *testing.T) {
	tests := []string{"return_literal", "functions", "binop"}

	c := newCompiler(t, "llc")
	for _, name := range tests {
		t.Run(fmt.Sprintf("TestLowerGolden(%s)", name), func(t *testing.T) {
			ir, err := c.LowerFile(filepath.Join("testdata", name+".gala"))
			if err != nil {
				t.Fatal(err)
			}
			expected, err := os.ReadFile(filepath.Join("testdata", name+".ll"))
			if err != nil {
				t.Fatal(err)
			}
			if ir != string(expected) {
				t.Errorf("expected:\n%s\ngot:\n%s", expected, ir)
			}
		})
	}
}

func TestLowerUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		label string
		line  int
	}{
		{"string_return", "string", 2},
		{"if_stmt", "if_stmt", 2},
	}

	c := newCompiler(t, "llc")
	for _, test := range tests {
		t.Run(fmt.Sprintf("TestLowerUnsupported(%s)", test.name), func(t *testing.T) {
			_, err := c.LowerFile(filepath.Join("testdata", test.name+".gala"))
			var unsupported *ast.UnsupportedError
			if !errors.As(err, &unsupported) {
				t.Fatalf("expected *ast.UnsupportedError, got %v", err)
			}
			if unsupported.Label != test.label {
				t.Errorf("expected %s to be unsupported, got %s", test.label, unsupported.Label)
			}
			if unsupported.Pos.Line != test.line {
				t.Errorf("expected error on line %d, got %d", test.line, unsupported.Pos.Line)
			}
		})
	}
}

// Executables return the value of main as their exit status.
func TestBuildAndRun(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		expected int
	}{
		{"return_literal", "llc", 5},
		{"functions", "llc", 42},
		{"return_literal", "llvm", 5},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("TestBuildAndRun(%s, %s)", test.name, test.backend), func(t *testing.T) {
			if test.backend == "llc" {
				testutil.RequireTools(t, "llc", "cc")
			} else {
				testutil.RequireTools(t, "cc")
			}

			c := newCompiler(t, test.backend)
			out := filepath.Join(t.TempDir(), test.name)
			collector := diagnostics.NewSilent()
			err := c.Build(context.Background(), filepath.Join("testdata", test.name+".gala"), out, collector)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			err = exec.Command(out).Run()
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("expected a non-zero exit status, got %v", err)
			}
			if exitErr.ExitCode() != test.expected {
				t.Errorf("expected exit status %d, got %d", test.expected, exitErr.ExitCode())
			}
		})
	}
}

func TestBuildInvalidIRFailsInAssembler(t *testing.T) {
	testutil.RequireTools(t, "llc", "cc")

	c := newCompiler(t, "llc")
	collector := diagnostics.NewSilent()
	err := c.Build(context.Background(), filepath.Join("testdata", "binop.gala"), filepath.Join(t.TempDir(), "binop"), collector)
	if err == nil {
		t.Fatalf("expected llc to reject spliced binary operations")
	}
	if collector.Count(diagnostics.KIND_TOOL) != 1 {
		t.Errorf("expected a tool error, got %v", collector.Diags)
	}
	if !strings.Contains(collector.Diags[0].Message, "llc") {
		t.Errorf("expected the message to name llc, got %s", collector.Diags[0].Message)
	}
}
