package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/diagnostics"
	"github.com/gala-lang/gala/internal/ast"
	"github.com/gala-lang/gala/internal/codegen"
	"github.com/gala-lang/gala/internal/compiler"
	"github.com/gala-lang/gala/internal/parser"
	"github.com/gala-lang/gala/internal/watch"
)

var DevMode string

func main() {
	config.SetDevMode(DevMode == "1")
	config.SetDebugMode(os.Getenv("GALA_DEBUG") == "1")
	if config.DEV {
		fmt.Println("[DEV MODE] initialized")
	}

	args, err := cli(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	err = config.SetupConfigDir()
	if err != nil {
		log.Fatal(err)
	}
	err = config.SetupEnvFile()
	if err != nil {
		log.Fatal(err)
	}

	switch args.Command {
	case COMMAND_HELP:
		fmt.Print(HELP_COMMAND)
		return
	case COMMAND_ENV:
		fmt.Printf("GALA_CONFIG_DIR='%s'\n", config.GALA_CONFIG_DIR)
		config.ENVS.ShowAll(os.Stdout)
		return
	case COMMAND_VERSION:
		fmt.Printf("gala %s\n", config.VERSION)
		version, err := codegen.CheckVersion(context.Background(), config.ENVS.LLC)
		if version != nil {
			fmt.Printf("llvm %s\n", version)
		}
		if err != nil {
			fmt.Printf("warning: %s\n", err)
		}
		return
	}

	p, err := parser.Default()
	if err != nil {
		log.Fatal(err)
	}

	switch args.Command {
	case COMMAND_GRAMMAR:
		fmt.Print(p.GrammarText())
	case COMMAND_REPL:
		repl(p, config.GALA_CONFIG_DIR)
	case COMMAND_TREE:
		loc, err := ast.LocFromPath(args.Paths[0])
		if err != nil {
			log.Fatal(err)
		}
		lex, err := p.NewLexerFromFilePath(loc)
		if err != nil {
			log.Fatal(err)
		}
		tree, err := p.ParseTree(lex)
		if err != nil {
			exit(err)
		}
		fmt.Print(tree.Pretty())
	case COMMAND_IR:
		c := compiler.New(p, config.ENVS, args.BuildType)
		ir, err := c.LowerFile(args.Paths[0])
		if err != nil {
			exit(err)
		}
		fmt.Print(ir)
	case COMMAND_BUILD:
		c := compiler.New(p, config.ENVS, args.BuildType)
		if args.Watch {
			buildWatch(c, args)
			return
		}
		err := build(context.Background(), c, args)
		if err != nil {
			os.Exit(exitCode(err))
		}
	}
}

func build(ctx context.Context, c *compiler.Compiler, args CliResult) error {
	if args.Out != "" {
		collector := diagnostics.New()
		return c.Build(ctx, args.Paths[0], args.Out, collector)
	}

	units, err := c.BuildAll(ctx, args.Paths, ".")
	for _, unit := range units {
		for _, diag := range unit.Diags {
			fmt.Fprintln(os.Stderr, diag)
		}
	}
	if err != nil {
		for _, unit := range units {
			if unit.Err != nil {
				return unit.Err
			}
		}
	}
	return err
}

func buildWatch(c *compiler.Compiler, args CliResult) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fw, err := watch.New(args.Paths)
	if err != nil {
		log.Fatal(err)
	}
	defer fw.Close()

	err = watch.Run(ctx, fw, 100*time.Millisecond, func(changed []string) {
		if changed != nil {
			fmt.Printf("rebuilding after changes to %v\n", changed)
		}
		if err := build(ctx, c, args); err == nil {
			fmt.Println("build succeeded")
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

// exit reports err and leaves with the exit code it maps to.
func exit(err error) {
	diagnostics.New().Report(err)
	os.Exit(exitCode(err))
}

// exitCode propagates the status of a failing external tool.
func exitCode(err error) int {
	var toolErr *codegen.ToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
		return toolErr.ExitCode
	}
	return 1
}
