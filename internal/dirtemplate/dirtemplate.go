// Package dirtemplate renders a whole template directory: every file is
// compiled into a directory program, interpreted against the parameters and
// rendered into zero or more output files.
package dirtemplate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/mondir/internal/builder"
	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/executor"
	"github.com/specialistvlad/mondir/internal/fsutil"
	"github.com/specialistvlad/mondir/internal/host"
	"github.com/specialistvlad/mondir/internal/output"
	"github.com/specialistvlad/mondir/internal/render"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// Options configures a DirTemplate. It is not modified after New.
type Options struct {
	// Host evaluates expressions and renders templates. Required.
	Host host.Host
	// Workers bounds how many files are processed at once. Values below 1
	// mean one worker.
	Workers int
	// FailFast stops at the first failing file. Otherwise every file is
	// processed and the failures are returned together.
	FailFast bool
	// Exclude holds doublestar patterns of template paths to skip.
	Exclude []string
}

// DirTemplate is a template directory bound to a host.
type DirTemplate struct {
	fs   afero.Fs
	root string
	opts Options

	mu    sync.Mutex
	cache map[[32]byte]*builder.Program
}

// New creates a DirTemplate for the directory root on fsys.
func New(fsys afero.Fs, root string, opts Options) (*DirTemplate, error) {
	if opts.Host == nil {
		return nil, errors.New("dirtemplate: a host is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &DirTemplate{
		fs:    fsys,
		root:  root,
		opts:  opts,
		cache: map[[32]byte]*builder.Program{},
	}, nil
}

// Files lists the template files, sorted.
func (d *DirTemplate) Files() ([]string, error) {
	return fsutil.FindTemplates(d.fs, d.root, d.opts.Exclude)
}

// Program compiles the template file name, a path relative to the root.
// Programs are cached by the identity of the name and the file content.
func (d *DirTemplate) Program(ctx context.Context, name string) (*builder.Program, error) {
	src, err := afero.ReadFile(d.fs, filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, &tmplerr.LoadingError{File: name, Err: err}
	}

	key := blake3.Sum256(append([]byte(name+"\x00"), src...))
	d.mu.Lock()
	prog, ok := d.cache[key]
	d.mu.Unlock()
	if ok {
		ctxlog.FromContext(ctx).Debug("Using cached directory program.", "file", name)
		return prog, nil
	}

	prog, err = builder.Compile(ctx, name, src)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.cache[key] = prog
	d.mu.Unlock()
	return prog, nil
}

// Plan renders every template file against params and returns the output
// files in template order, then emission order. Nothing is written.
//
// With FailFast the first error is returned. Otherwise the files of
// templates that succeeded are returned together with a *multierror.Error
// holding every failure in template order.
func (d *DirTemplate) Plan(ctx context.Context, params host.Vars) ([]render.File, error) {
	logger := ctxlog.FromContext(ctx)
	names, err := d.Files()
	if err != nil {
		return nil, err
	}
	logger.Debug("Found template files.", "root", d.root, "count", len(names))

	perFile := make([][]render.File, len(names))
	failures := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			files, err := d.renderFile(gctx, name, params)
			if err != nil {
				if d.opts.FailFast {
					return err
				}
				logger.Debug("Template file failed.", "file", name, "error", err)
				failures[i] = err
				return nil
			}
			perFile[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		result []render.File
		merr   *multierror.Error
		failed int
	)
	for i := range names {
		if failures[i] != nil {
			merr = multierror.Append(merr, failures[i])
			failed++
			continue
		}
		result = append(result, perFile[i]...)
	}
	logger.Debug("Planned template directory.", "root", d.root, "files", len(result), "failures", failed)
	return result, merr.ErrorOrNil()
}

// Render plans the directory and writes the result with w, sequentially
// and in plan order. In collect mode the files of successful templates are
// written even when others failed; the failures are returned alongside.
func (d *DirTemplate) Render(ctx context.Context, params host.Vars, w *output.Writer) ([]output.Result, error) {
	files, planErr := d.Plan(ctx, params)
	if planErr != nil && (d.opts.FailFast || files == nil) {
		return nil, planErr
	}

	results, err := w.WriteAll(ctx, files)
	if err != nil {
		if planErr != nil {
			return results, multierror.Append(planErr, err)
		}
		return results, err
	}
	ctxlog.FromContext(ctx).Debug("Rendered template directory.", "root", d.root, "written", len(results))
	return results, planErr
}

func (d *DirTemplate) renderFile(ctx context.Context, name string, params host.Vars) ([]render.File, error) {
	ctx, logger := ctxlog.With(ctx, "file", name)

	prog, err := d.Program(ctx, name)
	if err != nil {
		return nil, err
	}
	ems, err := executor.Run(ctx, prog, d.opts.Host, params)
	if err != nil {
		return nil, err
	}
	files, err := render.RenderAll(ctx, prog, d.opts.Host, ems)
	if err != nil {
		return nil, err
	}
	logger.Debug("Template file rendered.", "emissions", len(ems))
	return files, nil
}

// String implements fmt.Stringer.
func (d *DirTemplate) String() string {
	return fmt.Sprintf("DirTemplate(%s)", d.root)
}
