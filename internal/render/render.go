// Package render turns the emissions of a directory program into concrete
// output files: a relative path and the rendered content.
package render

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/mondir/internal/builder"
	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/executor"
	"github.com/specialistvlad/mondir/internal/host"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// File is one rendered output file.
type File struct {
	// Source is the template file path the output came from.
	Source string
	// Path is the slash-separated output path, relative to the output root.
	Path    string
	Content string
	// Node is the address of the thisfile leaf that produced the file.
	Node string
}

// Render produces the file for a single emission of prog.
func Render(ctx context.Context, prog *builder.Program, h host.Host, em executor.Emission) (File, error) {
	node := em.Node.String()
	fail := func(expr string, rng hcl.Range, err error) error {
		return &tmplerr.RenderingError{File: prog.Name, Node: node, Expr: expr, Range: rng, Err: err}
	}

	// The original name is always rendered since an override is placed in
	// its directory.
	name, err := h.Render(prog.NameTemplate.Snippet(), em.Vars)
	if err != nil {
		rng, err := locate(prog.NameTemplate, err)
		return File{}, fail("file name", rng, err)
	}

	out := name
	expr, rng := "file name", prog.NameTemplate.Range
	if em.Filename != nil {
		override, err := h.Render(em.Filename.Snippet(), em.Vars)
		if err != nil {
			rng, err := locate(*em.Filename, err)
			return File{}, fail("filename", rng, err)
		}
		expr, rng = "filename", em.Filename.Range
		override = strings.ReplaceAll(strings.TrimSpace(override), `\`, "/")
		switch {
		case override == "":
			return File{}, fail(expr, rng, errEmptyPath)
		case path.IsAbs(override) || hasDrive(override):
			return File{}, fail(expr, rng, fmt.Errorf("rendered file name %q must be relative", override))
		}
		out = path.Join(path.Dir(name), override)
	}

	clean, err := cleanPath(out)
	if err != nil {
		return File{}, fail(expr, rng, err)
	}

	tmpl := prog.DefaultContent
	expr = "content"
	if em.Content != nil {
		tmpl = *em.Content
		expr = "content override"
	}
	content, err := h.Render(tmpl.Snippet(), em.Vars)
	if err != nil {
		rng, err := locate(tmpl, err)
		return File{}, fail(expr, rng, err)
	}

	ctxlog.FromContext(ctx).Debug("Rendered file.", "file", prog.Name, "node", node, "path", clean, "bytes", len(content))
	return File{Source: prog.Name, Path: clean, Content: content, Node: node}, nil
}

// RenderAll renders every emission in order and stops at the first failure.
func RenderAll(ctx context.Context, prog *builder.Program, h host.Host, ems []executor.Emission) ([]File, error) {
	files := make([]File, 0, len(ems))
	for _, em := range ems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := Render(ctx, prog, h, em)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

var errEmptyPath = errors.New("rendered file name is empty")

// locate rewrites the host diagnostics in err to positions in the template
// file and returns the subject of the first error among them. Without
// diagnostics the template's own range is returned.
func locate(t builder.Template, err error) (hcl.Range, error) {
	var diags hcl.Diagnostics
	if !errors.As(err, &diags) {
		return t.Range, err
	}

	rng, found := t.Range, false
	mapped := make(hcl.Diagnostics, 0, len(diags))
	for _, d := range diags {
		diag := *d
		if diag.Subject != nil {
			subject := t.SourceRange(*diag.Subject)
			diag.Subject = &subject
			if !found && diag.Severity == hcl.DiagError {
				rng, found = subject, true
			}
		}
		if diag.Context != nil {
			around := t.SourceRange(*diag.Context)
			diag.Context = &around
		}
		mapped = append(mapped, &diag)
	}
	return rng, mapped
}

// cleanPath normalizes a rendered path and rejects names that would land
// outside the output root.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, `\`, "/")
	if strings.TrimSpace(p) == "" {
		return "", errEmptyPath
	}
	if path.IsAbs(p) || hasDrive(p) {
		return "", fmt.Errorf("rendered file name %q must be relative", p)
	}
	clean := path.Clean(p)
	switch {
	case clean == ".":
		return "", errEmptyPath
	case clean == ".." || strings.HasPrefix(clean, "../"):
		return "", fmt.Errorf("rendered file name %q escapes the output directory", p)
	case strings.HasSuffix(p, "/"):
		return "", fmt.Errorf("rendered file name %q names a directory", p)
	}
	return clean, nil
}

func hasDrive(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
