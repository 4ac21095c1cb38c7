package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/mondir/internal/config"
	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/dirtemplate"
	"github.com/specialistvlad/mondir/internal/hcl"
	"github.com/specialistvlad/mondir/internal/host"
	"github.com/specialistvlad/mondir/internal/notify"
	"github.com/specialistvlad/mondir/internal/output"
	"github.com/specialistvlad/mondir/internal/varfile"
)

// Run renders the template directory. It returns the written (or, in dry
// run mode, planned) files. In collect mode the results of successful
// templates are returned together with the aggregated failures.
func (a *App) Run(ctx context.Context) ([]output.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	params, err := a.params(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Parameters resolved.", "names", params.Names())

	dt, err := dirtemplate.New(a.fs, a.config.TemplateDir, dirtemplate.Options{
		Host:     hcl.NewHost(a.registry.Functions()),
		Workers:  a.config.Workers,
		FailFast: a.config.FailFast,
		Exclude:  a.config.Exclude,
	})
	if err != nil {
		return nil, err
	}

	w := output.NewWriter(a.fs, a.config.OutputDir, a.config.Overwrite)
	w.DryRun = a.config.DryRun

	a.logger.Info("Rendering template directory.", "templates", a.config.TemplateDir, "output", a.config.OutputDir, "dry_run", a.config.DryRun)
	results, err := dt.Render(ctx, host.Vars(params), w)
	if err != nil {
		a.logger.Debug("Render finished with errors.", "written", len(results), "error", err)
		return results, err
	}
	a.logger.Info("Render finished.", "files", len(results))

	if a.config.NotifyURL != "" && !a.config.DryRun {
		a.notify(ctx, results)
	}

	a.logger.Debug("App.Run method finished.")
	return results, nil
}

// params merges the parameter sources, later ones winning: MONDIR_VAR_
// environment variables, variable files in order, then --var assignments.
func (a *App) params(ctx context.Context) (config.Params, error) {
	fromFiles, err := a.loader.Load(ctx, a.config.VarFiles...)
	if err != nil {
		return nil, err
	}
	fromArgs, err := varfile.ParseAssignments(a.config.Vars)
	if err != nil {
		return nil, err
	}
	return varfile.FromEnviron(a.environ).Merge(fromFiles, fromArgs), nil
}

// notify reports the render to the configured socket.io server. Failures are
// only logged.
func (a *App) notify(ctx context.Context, results []output.Result) {
	files := make([]string, len(results))
	for i, r := range results {
		files[i] = r.File.Path
	}
	err := notify.Send(ctx, notify.Config{
		URL:     a.config.NotifyURL,
		Timeout: a.config.NotifyTimeout,
		WaitAck: a.config.NotifyWaitAck,
	}, notify.Payload{
		TemplateDir: a.config.TemplateDir,
		OutputDir:   a.config.OutputDir,
		Files:       files,
	})
	if err != nil {
		a.logger.Warn("Render notification failed.", "url", a.config.NotifyURL, "error", fmt.Sprint(err))
		return
	}
	a.logger.Info("Render notification sent.", "url", a.config.NotifyURL, "files", len(files))
}
