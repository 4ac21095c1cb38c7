// Package output writes rendered files below an output root.
package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/render"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// Status reports what Write did with a file.
type Status int

const (
	// Created means the file did not exist before.
	Created Status = iota
	// Overwritten means an existing file was replaced.
	Overwritten
	// Planned means nothing was written because the writer is in dry-run mode.
	Planned
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Overwritten:
		return "overwritten"
	case Planned:
		return "planned"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of writing one file.
type Result struct {
	File   render.File
	Target string
	Status Status
}

// Writer writes rendered files below Root. A Writer is not safe for
// concurrent use; files are written in order so that later files for the
// same path win.
type Writer struct {
	Fs   afero.Fs
	Root string
	// Overwrite allows replacing files that existed before this writer
	// touched them.
	Overwrite bool
	// DryRun reports what would be written without touching Fs.
	DryRun bool

	written map[string]bool
}

// NewWriter creates a writer for root on fsys.
func NewWriter(fsys afero.Fs, root string, overwrite bool) *Writer {
	return &Writer{Fs: fsys, Root: root, Overwrite: overwrite}
}

// Write writes f. Failures are returned as *tmplerr.OutputError.
func (w *Writer) Write(ctx context.Context, f render.File) (Result, error) {
	target := filepath.Join(w.Root, filepath.FromSlash(f.Path))
	res := Result{File: f, Target: target}
	logger := ctxlog.FromContext(ctx)

	if w.DryRun {
		res.Status = Planned
		logger.Debug("Planned file.", "file", f.Source, "path", target)
		return res, nil
	}
	if w.written == nil {
		w.written = map[string]bool{}
	}

	fail := func(err error) error {
		return &tmplerr.OutputError{File: f.Source, Path: target, Err: err}
	}

	if err := w.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return res, fail(err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	replace := w.Overwrite || w.written[target]
	if !replace {
		flags |= os.O_EXCL
	}

	existed := w.written[target]
	if !existed && replace {
		if _, err := w.Fs.Stat(target); err == nil {
			existed = true
		}
	}

	file, err := w.Fs.OpenFile(target, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return res, fail(fmt.Errorf("file already exists; use --overwrite to replace it: %w", err))
		}
		return res, fail(err)
	}
	if _, err := file.WriteString(f.Content); err != nil {
		file.Close()
		return res, fail(err)
	}
	if err := file.Close(); err != nil {
		return res, fail(err)
	}

	w.written[target] = true
	res.Status = Created
	if existed {
		res.Status = Overwritten
	}
	logger.Debug("Wrote file.", "file", f.Source, "path", target, "status", res.Status)
	return res, nil
}

// WriteAll writes files in order and stops at the first failure, returning
// the results written so far.
func (w *Writer) WriteAll(ctx context.Context, files []render.File) ([]Result, error) {
	results := make([]Result, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := w.Write(ctx, f)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
