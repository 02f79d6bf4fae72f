// Package compiler runs the whole pipeline for a compilation unit: parse,
// build the AST, lower it to IR, assemble and link.
package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/codegen"
	"github.com/gala-lang/gala/internal/codegen/llvm"
	"github.com/gala-lang/gala/internal/parser"
	"golang.org/x/sync/errgroup"
)

type Compiler struct {
	Parser    *parser.Parser
	Assembler codegen.Assembler
	Linker    codegen.Linker
	BuildType config.BuildType
}

// New picks the assembler named by envs.BACKEND: "llvm" assembles in
// process, anything else runs envs.LLC.
func New(p *parser.Parser, envs *config.Envs, buildType config.BuildType) *Compiler {
	if envs == nil {
		envs = config.DefaultEnvs()
	}

	var assembler codegen.Assembler
	switch envs.BACKEND {
	case "llvm":
		assembler = llvm.NewAssembler()
	default:
		assembler = codegen.NewLLC(envs.LLC)
	}

	return &Compiler{
		Parser:    p,
		Assembler: assembler,
		Linker:    codegen.NewCC(envs.CC),
		BuildType: buildType,
	}
}

// Lower parses src and lowers it with a fresh global scope.
func (c *Compiler) Lower(loc *ast.Loc, src []byte) (string, error) {
	program, err := c.Parser.ParseProgram(loc, src)
	if err != nil {
		return "", err
	}
	return program.Lower()
}

func (c *Compiler) LowerFile(path string) (string, error) {
	loc, err := ast.LocFromPath(path)
	if err != nil {
		return "", err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return c.Lower(loc, src)
}

// Build compiles the file at path into the executable out. Every error is
// reported to collector and returned wrapped in COMPILER_ERROR_FOUND.
func (c *Compiler) Build(ctx context.Context, path, out string, collector *diagnostics.Collector) error {
	err := c.build(ctx, path, out)
	if err != nil {
		collector.Report(err)
		return fmt.Errorf("%w: %w", diagnostics.COMPILER_ERROR_FOUND, err)
	}
	return nil
}

func (c *Compiler) build(ctx context.Context, path, out string) error {
	ir, err := c.LowerFile(path)
	if err != nil {
		return err
	}
	if config.DEBUG_MODE {
		fmt.Printf("[DEBUG MODE] IR:\n%s", ir)
	}

	asm, err := c.Assembler.Assemble(ctx, ir, c.BuildType)
	if err != nil {
		return err
	}
	return c.Linker.Link(ctx, asm, out, c.BuildType)
}

// Unit is the outcome of building one file.
type Unit struct {
	Path  string
	Out   string
	Diags []diagnostics.Diag
	Err   error
}

func (unit Unit) Failed() bool { return len(unit.Diags) > 0 }

// OutputName is the executable built from path: its base name without
// extension, inside dir.
func OutputName(dir, path string) string {
	base := filepath.Base(path)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// BuildAll builds independent files concurrently, at most GOMAXPROCS at a
// time. A failing file does not stop the others; units are returned in the
// order of paths.
func (c *Compiler) BuildAll(ctx context.Context, paths []string, outDir string) ([]Unit, error) {
	units := make([]Unit, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		i, path := i, path
		units[i] = Unit{Path: path, Out: OutputName(outDir, path)}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			collector := diagnostics.NewSilent()
			units[i].Err = c.Build(gctx, path, units[i].Out, collector)
			units[i].Diags = collector.Diags
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return units, err
	}
	for _, unit := range units {
		if unit.Failed() {
			return units, diagnostics.COMPILER_ERROR_FOUND
		}
	}
	return units, nil
}
