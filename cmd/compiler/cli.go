package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gala-lang/gala/config"
)

type Command int

const (
	COMMAND_BUILD Command = iota
	COMMAND_IR
	COMMAND_TREE
	COMMAND_GRAMMAR
	COMMAND_REPL
	COMMAND_HELP
	COMMAND_ENV
	COMMAND_VERSION
)

type CliResult struct {
	Command   Command
	BuildType config.BuildType
	Paths     []string
	Out       string
	Watch     bool
}

var HELP_COMMAND string = `Gala - a small indentation-sensitive language compiled to LLVM IR.

Usage:
  gala <command> [arguments]

Available Commands:
  build <file>... [-o out] [-release] [-debug] [-watch]   Builds an executable per file
      -o out        Name of the executable (only with a single file)
      -release      Build in release mode
      -debug        Build in debug mode (default)
      -watch        Rebuild whenever a source file changes

  ir <file>                         Print the IR of a file
  tree <file>                       Print the parse tree of a file
  grammar                           Print the assembled grammar
  repl                              Lower functions interactively
  env                               Show environment information
  version                           Show the compiler version
  help                              Show this help message

Examples:
  gala build main.gala               Build ./main in debug mode
  gala build main.gala -release      Build ./main in release mode
  gala build a.gala b.gala -watch    Build ./a and ./b, rebuild on changes
  gala ir main.gala                  Print the LLVM IR of main.gala

The assembler is selected by GALA_BACKEND ("llc" or "llvm"), see 'gala env'.
`

func cli(args []string) (CliResult, error) {
	result := CliResult{BuildType: config.DEBUG}

	if len(args) == 0 {
		result.Command = COMMAND_HELP
		return result, nil
	}

	command := args[0]
	switch command {
	case "env":
		result.Command = COMMAND_ENV
	case "help":
		result.Command = COMMAND_HELP
	case "version":
		result.Command = COMMAND_VERSION
	case "grammar":
		result.Command = COMMAND_GRAMMAR
	case "repl":
		result.Command = COMMAND_REPL
	case "ir", "tree":
		result.Command = COMMAND_IR
		if command == "tree" {
			result.Command = COMMAND_TREE
		}
		if len(args) != 2 {
			return result, fmt.Errorf("%s expects exactly one file", command)
		}
		if err := checkFile(args[1]); err != nil {
			return result, err
		}
		result.Paths = args[1:]
	case "build":
		result.Command = COMMAND_BUILD
		err := buildArgs(args[1:], &result)
		if err != nil {
			return result, err
		}
	default:
		return result, fmt.Errorf("unknown command %q, run 'gala help'", command)
	}
	return result, nil
}

func buildArgs(args []string, result *CliResult) error {
	releaseBuildSet, debugBuildSet := false, false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-release":
			releaseBuildSet = true
			result.BuildType = config.RELEASE
		case "-debug":
			debugBuildSet = true
			result.BuildType = config.DEBUG
		case "-watch":
			result.Watch = true
		case "-o":
			if i+1 >= len(args) {
				return fmt.Errorf("-o expects the name of the executable")
			}
			i++
			result.Out = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return fmt.Errorf("unknown flag %s", arg)
			}
			if err := checkFile(arg); err != nil {
				return err
			}
			result.Paths = append(result.Paths, arg)
		}
	}

	if releaseBuildSet && debugBuildSet {
		return fmt.Errorf("choose either -release or -debug, not both")
	}
	if len(result.Paths) == 0 {
		return fmt.Errorf("build expects at least one file")
	}
	if result.Out != "" && len(result.Paths) > 1 {
		return fmt.Errorf("-o can only be used when building a single file")
	}
	return nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("no such file: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a source file", path)
	}
	return nil
}
