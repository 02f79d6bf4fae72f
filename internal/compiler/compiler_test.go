package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/codegen"
	"github.com/gala-lang/gala/internal/testutil"
)

// echoAssembler returns the IR as the assembly
type echoAssembler struct{}

func (echoAssembler) Assemble(ctx context.Context, ir string, buildType config.BuildType) ([]byte, error) {
	return []byte(buildType.OptLevel() + "\n" + ir), nil
}

type failingAssembler struct{}

func (failingAssembler) Assemble(ctx context.Context, ir string, buildType config.BuildType) ([]byte, error) {
	return nil, &codegen.ToolError{Tool: "llc", ExitCode: 1, Output: "error: bad IR"}
}

// fileLinker writes the assembly to the output path
type fileLinker struct{}

func (fileLinker) Link(ctx context.Context, asm []byte, out string, buildType config.BuildType) error {
	return os.WriteFile(out, asm, 0644)
}

func newCompiler(t *testing.T) *Compiler {
	t.Helper()
	return &Compiler{Parser: testutil.NewParser(t), Assembler: echoAssembler{}, Linker: fileLinker{}, BuildType: config.DEBUG}
}

func TestLower(t *testing.T) {
	c := newCompiler(t)
	ir, err := c.Lower(ast.NewLoc("main.gala"), []byte("fn main() = \n    return 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	expected := "define i32 @main() {\n    ret i32 5\n}\n"
	if ir != expected {
		t.Errorf("expected %q, got %q", expected, ir)
	}
}

func TestBuild(t *testing.T) {
	c := newCompiler(t)
	dir := t.TempDir()
	path := testutil.WriteSource(t, dir, "main.gala", "fn main() = \n    return 2 * 3\n")
	out := OutputName(dir, path)

	collector := diagnostics.NewSilent()
	err := c.Build(context.Background(), path, out, collector)
	if err != nil {
		t.Fatalf("unexpected error: %v (%v)", err, collector.Diags)
	}

	content, err := os.ReadFile(filepath.Join(dir, "main"))
	if err != nil {
		t.Fatal(err)
	}
	expected := "-O0\ndefine i32 @main() {\n    ret i32 2 * 3\n}\n"
	if string(content) != expected {
		t.Errorf("expected %q, got %q", expected, content)
	}
}

func TestBuildReportsErrors(t *testing.T) {
	tests := []struct {
		src       string
		assembler codegen.Assembler
		kind      diagnostics.Kind
	}{
		{"fn main() = \n    return\n", echoAssembler{}, diagnostics.KIND_SYNTAX},
		{"fn main() = \n   return 5\n", echoAssembler{}, diagnostics.KIND_LEXICAL},
		{"fn main() = \n    x = 5\n", echoAssembler{}, diagnostics.KIND_UNSUPPORTED},
		{"fn main() = \n    return 5\nfn main() = \n    return 6\n", echoAssembler{}, diagnostics.KIND_SEMANTIC},
		{"fn main() = \n    return 5\n", failingAssembler{}, diagnostics.KIND_TOOL},
	}

	for i, test := range tests {
		t.Run(fmt.Sprintf("TestBuildReportsErrors(%d)", i), func(t *testing.T) {
			c := newCompiler(t)
			c.Assembler = test.assembler
			dir := t.TempDir()
			path := testutil.WriteSource(t, dir, "main.gala", test.src)

			collector := diagnostics.NewSilent()
			err := c.Build(context.Background(), path, OutputName(dir, path), collector)
			if !errors.Is(err, diagnostics.COMPILER_ERROR_FOUND) {
				t.Fatalf("expected COMPILER_ERROR_FOUND, got %v", err)
			}
			if collector.Count(test.kind) != 1 {
				t.Errorf("expected one %s, got %v", test.kind, collector.Diags)
			}
		})
	}
}

func TestBuildAll(t *testing.T) {
	c := newCompiler(t)
	dir := t.TempDir()
	outDir := t.TempDir()

	paths := []string{
		testutil.WriteSource(t, dir, "a.gala", "fn a() = \n    return 1\n"),
		testutil.WriteSource(t, dir, "b.gala", "fn b() = \n    return\n"),
		testutil.WriteSource(t, dir, "c.gala", "fn c() = \n    return 3\n"),
	}

	units, err := c.BuildAll(context.Background(), paths, outDir)
	if !errors.Is(err, diagnostics.COMPILER_ERROR_FOUND) {
		t.Fatalf("expected COMPILER_ERROR_FOUND, got %v", err)
	}
	if len(units) != len(paths) {
		t.Fatalf("expected %d units, got %d", len(paths), len(units))
	}

	for i, unit := range units {
		if unit.Path != paths[i] {
			t.Errorf("expected unit %d to be %s, got %s", i, paths[i], unit.Path)
		}
	}
	if units[0].Failed() || units[2].Failed() {
		t.Errorf("expected a and c to build, got %v and %v", units[0].Diags, units[2].Diags)
	}
	if !units[1].Failed() {
		t.Errorf("expected b to fail")
	}

	for _, name := range []string{"a", "c"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s to be built: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "b")); !os.IsNotExist(err) {
		t.Errorf("expected b not to be built")
	}
}

func TestBuildAllCanceled(t *testing.T) {
	c := newCompiler(t)
	dir := t.TempDir()
	path := testutil.WriteSource(t, dir, "a.gala", "fn a() = \n    return 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.BuildAll(ctx, []string{path}, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewPicksBackend(t *testing.T) {
	c := New(testutil.NewParser(t), &config.Envs{LLC: "llc-18", CC: "gcc", BACKEND: "llc"}, config.RELEASE)
	llc, ok := c.Assembler.(*codegen.LLC)
	if !ok {
		t.Fatalf("expected *codegen.LLC, got %T", c.Assembler)
	}
	if llc.Path != "llc-18" {
		t.Errorf("expected llc-18, got %s", llc.Path)
	}
	if cc, ok := c.Linker.(*codegen.CC); !ok || cc.Path != "gcc" {
		t.Errorf("expected gcc linker, got %#v", c.Linker)
	}
}

func TestBuildKeepsToolError(t *testing.T) {
	c := newCompiler(t)
	c.Assembler = failingAssembler{}
	dir := t.TempDir()
	path := testutil.WriteSource(t, dir, "main.gala", "fn main() = \n    return 5\n")

	err := c.Build(context.Background(), path, OutputName(dir, path), diagnostics.NewSilent())
	var toolErr *codegen.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *codegen.ToolError, got %v", err)
	}
	if toolErr.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", toolErr.ExitCode)
	}
}
