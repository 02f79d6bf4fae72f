package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/codegen"
	"github.com/gala-lang/gala/internal/testutil"
)

func sourceFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		err := os.WriteFile(paths[i], []byte("fn main() =\n    return 0\n"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func TestCli(t *testing.T) {
	files := sourceFiles(t, "a.gala", "b.gala")
	a, b := files[0], files[1]

	tests := []struct {
		args     []string
		expected CliResult
	}{
		{nil, CliResult{BuildType: config.DEBUG, Command: COMMAND_HELP}},
		{[]string{"help"}, CliResult{BuildType: config.DEBUG, Command: COMMAND_HELP}},
		{[]string{"env"}, CliResult{BuildType: config.DEBUG, Command: COMMAND_ENV}},
		{[]string{"version"}, CliResult{BuildType: config.DEBUG, Command: COMMAND_VERSION}},
		{[]string{"grammar"}, CliResult{BuildType: config.DEBUG, Command: COMMAND_GRAMMAR}},
		{[]string{"repl"}, CliResult{BuildType: config.DEBUG, Command: COMMAND_REPL}},
		{[]string{"ir", a}, CliResult{BuildType: config.DEBUG, Command: COMMAND_IR, Paths: []string{a}}},
		{[]string{"tree", a}, CliResult{BuildType: config.DEBUG, Command: COMMAND_TREE, Paths: []string{a}}},
		{[]string{"build", a}, CliResult{BuildType: config.DEBUG, Command: COMMAND_BUILD, Paths: []string{a}}},
		{
			[]string{"build", a, "-release", "-o", "out"},
			CliResult{Command: COMMAND_BUILD, BuildType: config.RELEASE, Paths: []string{a}, Out: "out"},
		},
		{
			[]string{"build", "-watch", a, b},
			CliResult{BuildType: config.DEBUG, Command: COMMAND_BUILD, Paths: []string{a, b}, Watch: true},
		},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("TestCli(%s)", strings.Join(test.args, " ")), func(t *testing.T) {
			result, err := cli(test.args)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(result, test.expected) {
				t.Errorf("expected %+v, got %+v", test.expected, result)
			}
		})
	}
}

func TestCliErrors(t *testing.T) {
	files := sourceFiles(t, "a.gala", "b.gala")
	a, b := files[0], files[1]

	tests := [][]string{
		{"compile"},
		{"build"},
		{"build", a, "-release", "-debug"},
		{"build", a, b, "-o", "out"},
		{"build", a, "-o"},
		{"build", a, "-fast"},
		{"build", filepath.Join(filepath.Dir(a), "missing.gala")},
		{"build", filepath.Dir(a)},
		{"ir"},
		{"tree", a, b},
	}

	for _, args := range tests {
		t.Run(fmt.Sprintf("TestCliErrors(%s)", strings.Join(args, " ")), func(t *testing.T) {
			_, err := cli(args)
			if err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{errors.New("boom"), 1},
		{&codegen.ToolError{Tool: "llc", ExitCode: 3}, 3},
		{fmt.Errorf("%w: %w", diagnostics.COMPILER_ERROR_FOUND, &codegen.ToolError{Tool: "cc", ExitCode: 2}), 2},
		{&codegen.ToolError{Tool: "llc", ExitCode: -1}, 1},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("TestExitCode(%d)", i), func(t *testing.T) {
			if code := exitCode(test.err); code != test.expected {
				t.Errorf("expected %d, got %d", test.expected, code)
			}
		})
	}
}

func TestReplSession(t *testing.T) {
	s := newSession(testutil.NewParser(t))
	var out strings.Builder

	err := s.eval("fn main() =\n    return 5\n", &out)
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "define i32 @main() {\n    ret i32 5\n}\n" {
		t.Errorf("unexpected IR %q", out.String())
	}

	// main is still defined, so the whole entry is rejected
	err = s.eval("fn other() =\n    return 1\n\nfn main() =\n    return 6\n", &out)
	var diagnoser diagnostics.Diagnoser
	if !errors.As(err, &diagnoser) || diagnoser.Diag().Kind != diagnostics.KIND_SEMANTIC {
		t.Fatalf("expected a redefinition error, got %v", err)
	}
	if !reflect.DeepEqual(s.globals.Names(), []string{"main"}) {
		t.Errorf("expected only main to be defined, got %v", s.globals.Names())
	}

	out.Reset()
	s.command(":defs", &out)
	if out.String() != "@main\n" {
		t.Errorf("expected @main, got %q", out.String())
	}

	s.command(":reset", &out)
	err = s.eval("fn main() =\n    return 6\n", &out)
	if err != nil {
		t.Errorf("expected main to be definable after :reset, got %v", err)
	}

	if s.command(":quit", &out) != true {
		t.Errorf("expected :quit to leave the REPL")
	}
}
