package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	COMPILER_ERROR_FOUND = errors.New("compiler error found")
)

type Collector struct {
	Diags []Diag

	out io.Writer
}

func New() *Collector {
	return &Collector{
		Diags: nil,
		out:   os.Stderr,
	}
}

// NewSilent returns a collector that only saves diagnostics.
func NewSilent() *Collector {
	return &Collector{
		Diags: nil,
		out:   io.Discard,
	}
}

func (collector *Collector) ReportAndSave(diag Diag) {
	fmt.Fprintln(collector.out, diag)
	collector.Diags = append(collector.Diags, diag)
}

// Report converts err into a diagnostic, reports and saves it. Errors that
// do not know how to describe themselves are reported as KIND_INTERNAL.
func (collector *Collector) Report(err error) {
	if err == nil {
		return
	}
	var d Diagnoser
	if errors.As(err, &d) {
		collector.ReportAndSave(d.Diag())
		return
	}
	collector.ReportAndSave(Diag{Kind: KIND_INTERNAL, Message: err.Error()})
}

func (collector *Collector) HasErrors() bool { return len(collector.Diags) > 0 }

// Count returns how many saved diagnostics have the given kind.
func (collector *Collector) Count(kind Kind) int {
	n := 0
	for _, diag := range collector.Diags {
		if diag.Kind == kind {
			n++
		}
	}
	return n
}
