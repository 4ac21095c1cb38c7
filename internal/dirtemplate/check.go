package dirtemplate

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/refs"
)

// Check compiles every template file and analyzes its host snippets without
// evaluating anything. Reports are returned for the files that compiled;
// failures are aggregated in template order.
func (d *DirTemplate) Check(ctx context.Context) ([]refs.Report, error) {
	names, err := d.Files()
	if err != nil {
		return nil, err
	}

	var (
		reports []refs.Report
		merr    *multierror.Error
	)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prog, err := d.Program(ctx, name)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		report, err := refs.Analyze(prog)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		reports = append(reports, report)
	}
	ctxlog.FromContext(ctx).Debug("Checked template directory.", "root", d.root, "files", len(names), "ok", len(reports))
	return reports, merr.ErrorOrNil()
}
