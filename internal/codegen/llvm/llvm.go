// Package llvm assembles IR in process with the LLVM C API instead of
// running llc.
package llvm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gala-lang/gala/config"
	"github.com/gala-lang/gala/internal/codegen"
	"tinygo.org/x/go-llvm"
)

var initOnce sync.Once

func initializeTargets() {
	initOnce.Do(func() {
		llvm.InitializeAllTargetInfos()
		llvm.InitializeAllTargets()
		llvm.InitializeAllTargetMCs()
		llvm.InitializeAllAsmPrinters()
	})
}

type Assembler struct {
	Triple string
}

func NewAssembler() *Assembler {
	initializeTargets()
	return &Assembler{Triple: llvm.DefaultTargetTriple()}
}

func (a *Assembler) Assemble(ctx context.Context, ir string, buildType config.BuildType) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	llvmContext := llvm.NewContext()
	defer llvmContext.Dispose()

	module, err := parseIR(llvmContext, ir)
	if err != nil {
		return nil, err
	}
	defer module.Dispose()

	err = llvm.VerifyModule(module, llvm.ReturnStatusAction)
	if err != nil {
		return nil, &codegen.ToolError{Tool: "llvm", ExitCode: -1, Output: err.Error()}
	}

	target, err := llvm.GetTargetFromTriple(a.Triple)
	if err != nil {
		return nil, err
	}

	level := llvm.CodeGenLevelNone
	if buildType == config.RELEASE {
		level = llvm.CodeGenLevelDefault
	}
	machine := target.CreateTargetMachine(a.Triple, "", "", level, llvm.RelocPIC, llvm.CodeModelDefault)
	defer machine.Dispose()

	module.SetTarget(a.Triple)
	data := machine.CreateTargetData()
	defer data.Dispose()
	module.SetDataLayout(data.String())

	if config.DEBUG_MODE {
		fmt.Printf("[DEBUG MODE] MODULE:\n%s\n", module.String())
	}

	buf, err := machine.EmitToMemoryBuffer(module, llvm.AssemblyFile)
	if err != nil {
		return nil, &codegen.ToolError{Tool: "llvm", ExitCode: -1, Output: err.Error()}
	}
	defer buf.Dispose()

	asm := make([]byte, len(buf.Bytes()))
	copy(asm, buf.Bytes())
	return asm, nil
}

// parseIR goes through a temporary file since a memory buffer can only be
// created from a file or stdin.
func parseIR(llvmContext llvm.Context, ir string) (llvm.Module, error) {
	dir, err := os.MkdirTemp("", "gala-ir")
	if err != nil {
		return llvm.Module{}, err
	}
	defer os.RemoveAll(dir)

	irFilepath := filepath.Join(dir, "module.ll")
	err = os.WriteFile(irFilepath, []byte(ir), 0644)
	if err != nil {
		return llvm.Module{}, err
	}

	buf, err := llvm.NewMemoryBufferFromFile(irFilepath)
	if err != nil {
		return llvm.Module{}, err
	}

	// ParseIR takes ownership of buf
	module, err := llvmContext.ParseIR(buf)
	if err != nil {
		return llvm.Module{}, &codegen.ToolError{Tool: "llvm", ExitCode: -1, Output: err.Error()}
	}
	return module, nil
}
