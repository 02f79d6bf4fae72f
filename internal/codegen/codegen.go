// Package codegen is the boundary between the compiler and the external
// toolchain: an assembler turning IR into native assembly and a linker
// turning assembly into an executable.
package codegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/diagnostics"
)

type Assembler interface {
	Assemble(ctx context.Context, ir string, buildType config.BuildType) ([]byte, error)
}

type Linker interface {
	Link(ctx context.Context, asm []byte, out string, buildType config.BuildType) error
}

// ToolError is an external tool that could not be run or exited with a
// non-zero status. ExitCode is -1 when the tool never ran.
type ToolError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (err *ToolError) Error() string {
	output := strings.TrimSpace(err.Output)
	if err.ExitCode < 0 {
		return fmt.Sprintf("%s: %s", err.Tool, output)
	}
	if output == "" {
		return fmt.Sprintf("%s exited with status %d", err.Tool, err.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", err.Tool, err.ExitCode, output)
}

func (err *ToolError) Diag() diagnostics.Diag {
	return diagnostics.Diag{Kind: diagnostics.KIND_TOOL, Message: err.Error()}
}

func toolError(tool string, err error, stderr string) *ToolError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ToolError{Tool: tool, ExitCode: exitErr.ExitCode(), Output: stderr}
	}
	return &ToolError{Tool: tool, ExitCode: -1, Output: err.Error()}
}

func run(cmd *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if config.DEBUG_MODE {
		fmt.Printf("[DEBUG MODE] COMMAND: %s\n", cmd)
	}

	err := cmd.Run()
	if err != nil {
		return nil, toolError(filepath.Base(cmd.Path), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// LLC assembles IR by piping it through the llc binary.
type LLC struct {
	Path string
}

func NewLLC(path string) *LLC {
	if path == "" {
		path = "llc"
	}
	return &LLC{Path: path}
}

func (llc *LLC) Assemble(ctx context.Context, ir string, buildType config.BuildType) ([]byte, error) {
	cmd := exec.CommandContext(ctx, llc.Path, buildType.OptLevel(), "-o", "-", "-")
	cmd.Stdin = strings.NewReader(ir)
	return run(cmd)
}

// CC links assembly into an executable with a C compiler driver.
type CC struct {
	Path string
}

func NewCC(path string) *CC {
	if path == "" {
		path = "cc"
	}
	return &CC{Path: path}
}

func (cc *CC) Link(ctx context.Context, asm []byte, out string, buildType config.BuildType) error {
	dir, err := os.MkdirTemp("", "gala-build")
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	asmFilepath := filepath.Join(dir, name+".s")
	err = os.WriteFile(asmFilepath, asm, 0644)
	if err != nil {
		return err
	}

	args := []string{asmFilepath, "-o", out}
	if buildType == config.RELEASE {
		args = append(args, "-Wl,-s")
	}
	_, err = run(exec.CommandContext(ctx, cc.Path, args...))
	if err != nil {
		return err
	}

	if config.DEBUG_MODE {
		fmt.Printf("[DEBUG MODE] keeping build directory %s\n", dir)
		return nil
	}
	return os.RemoveAll(dir)
}

var llvmVersionRe = regexp.MustCompile(`LLVM version (\d+\.\d+(\.\d+)?)`)

// CheckVersion runs `llc --version` and checks the reported LLVM release
// against config.LLVM_CONSTRAINT.
func CheckVersion(ctx context.Context, llcPath string) (*semver.Version, error) {
	output, err := run(exec.CommandContext(ctx, llcPath, "--version"))
	if err != nil {
		return nil, err
	}

	match := llvmVersionRe.FindSubmatch(output)
	if match == nil {
		return nil, fmt.Errorf("could not find the LLVM version in the output of %s --version", llcPath)
	}
	version, err := semver.NewVersion(string(match[1]))
	if err != nil {
		return nil, err
	}
	err = config.CheckLLVMVersion(version.String())
	if err != nil {
		return version, err
	}
	return version, nil
}
