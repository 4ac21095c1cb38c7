package app

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/dirtemplate"
	"github.com/specialistvlad/mondir/internal/hcl"
	"github.com/specialistvlad/mondir/internal/refs"
)

// Check analyzes the template directory without rendering it: syntax errors
// and calls to functions no registered module provides are reported.
func (a *App) Check(ctx context.Context) ([]refs.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	dt, err := dirtemplate.New(a.fs, a.config.TemplateDir, dirtemplate.Options{
		Host:    hcl.NewHost(a.registry.Functions()),
		Exclude: a.config.Exclude,
	})
	if err != nil {
		return nil, err
	}

	reports, checkErr := dt.Check(ctx)
	known := func(name string) bool {
		_, ok := a.registry.Owner(name)
		return ok
	}
	var merr *multierror.Error
	if checkErr != nil {
		merr = multierror.Append(merr, checkErr)
	}
	merr = multierror.Append(merr, refs.CheckFunctions(reports, known)...)

	a.logger.Info("Checked template directory.", "templates", a.config.TemplateDir, "files", len(reports))
	return reports, merr.ErrorOrNil()
}
