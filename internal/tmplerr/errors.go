// Package tmplerr defines the three failure families a directory template
// can produce: errors found while compiling a template file, errors found
// while expanding or rendering it, and errors found while writing results.
package tmplerr

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// LoadingError reports a template file that cannot be compiled into a program.
type LoadingError struct {
	File  string
	Range hcl.Range
	Err   error
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("%s: template loading failed: %v", location(e.File, e.Range), e.Err)
}

func (e *LoadingError) Unwrap() error { return e.Err }

// Loadingf builds a LoadingError with a formatted message.
func Loadingf(file string, rng hcl.Range, format string, args ...any) error {
	return &LoadingError{File: file, Range: rng, Err: fmt.Errorf(format, args...)}
}

// RenderingError reports a host evaluation failure while a program runs or
// while one of its emissions is rendered.
type RenderingError struct {
	File string
	// Node is the address of the program node being evaluated.
	Node string
	// Expr names the evaluated part, such as "iterable", "condition",
	// "file name", "filename" or "content".
	Expr  string
	Range hcl.Range
	Err   error
}

func (e *RenderingError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("%s: rendering %s failed: %v", location(e.File, e.Range), e.Expr, e.Err)
	}
	return fmt.Sprintf("%s: rendering %s of %s failed: %v", location(e.File, e.Range), e.Expr, e.Node, e.Err)
}

func (e *RenderingError) Unwrap() error { return e.Err }

// OutputError reports a rendered file that could not be written.
type OutputError struct {
	File string
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("writing %q (from %s) failed: %v", e.Path, e.File, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// Kind classifies an error by the family it belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindLoading
	KindRendering
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindRendering:
		return "rendering"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// KindOf returns the family of the first classified error in err's chain.
func KindOf(err error) Kind {
	var (
		loadErr   *LoadingError
		renderErr *RenderingError
		outErr    *OutputError
	)
	switch {
	case errors.As(err, &loadErr):
		return KindLoading
	case errors.As(err, &renderErr):
		return KindRendering
	case errors.As(err, &outErr):
		return KindOutput
	default:
		return KindUnknown
	}
}

func location(file string, rng hcl.Range) string {
	if rng.Start.Line == 0 {
		return file
	}
	return fmt.Sprintf("%s:%d,%d", file, rng.Start.Line, rng.Start.Column)
}
