package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"

	"github.com/specialistvlad/mondir/internal/output"
)

var (
	createdColor     = color.New(color.FgGreen)
	overwrittenColor = color.New(color.FgYellow)
	plannedColor     = color.New(color.FgCyan)
	failedColor      = color.New(color.FgRed, color.Bold)
)

func statusColor(s output.Status) *color.Color {
	switch s {
	case output.Overwritten:
		return overwrittenColor
	case output.Planned:
		return plannedColor
	default:
		return createdColor
	}
}

// printSummary lists every result and, when err is set, every failure.
func printSummary(w io.Writer, results []output.Result, err error, took time.Duration) {
	for _, r := range results {
		statusColor(r.Status).Fprintf(w, "%-11s", r.Status)
		fmt.Fprintf(w, " %s  (from %s)\n", r.File.Path, r.File.Source)
	}

	failures := 0
	if err != nil {
		errs := []error{err}
		if merr, ok := err.(*multierror.Error); ok {
			errs = merr.Errors
		}
		for _, e := range errs {
			failedColor.Fprint(w, "error")
			fmt.Fprintf(w, "       %v\n", e)
		}
		failures = len(errs)
	}

	fmt.Fprintf(w, "%d file(s), %d failure(s) in %s\n", len(results), failures, took.Round(time.Millisecond))
}
