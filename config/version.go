package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// VERSION is the version of the gala compiler.
var VERSION = semver.MustParse("0.1.0")

// LLVM_CONSTRAINT is the range of LLVM releases whose llc understands the
// emitted IR.
const LLVM_CONSTRAINT = ">= 14.0.0"

// CheckLLVMVersion reports whether version satisfies LLVM_CONSTRAINT.
func CheckLLVMVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid LLVM version %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(LLVM_CONSTRAINT)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("LLVM %s does not satisfy %s", v, LLVM_CONSTRAINT)
	}
	return nil
}
