package refs

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/specialistvlad/mondir/internal/builder"
	"github.com/specialistvlad/mondir/internal/host"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// Report describes what one template file needs from its caller.
type Report struct {
	File string
	// Params are the parameter names read somewhere in the file.
	Params []string
	// Functions are the names of all functions called.
	Functions []string
	// Spread is set when a spread loop may bind further names, so Params
	// can include names that items provide.
	Spread bool
}

// Analyze parses every host snippet of prog and reports the parameters and
// functions it uses. Snippets with syntax errors fail with a
// *tmplerr.LoadingError.
func Analyze(prog *builder.Program) (Report, error) {
	a := &analyzer{prog: prog, params: map[string]struct{}{}, functions: map[string]struct{}{}}
	if err := a.visit(prog.Root, map[string]bool{}); err != nil {
		return Report{}, err
	}
	return Report{
		File:      prog.Name,
		Params:    sortedSet(a.params),
		Functions: sortedSet(a.functions),
		Spread:    a.spread,
	}, nil
}

type analyzer struct {
	prog      *builder.Program
	params    map[string]struct{}
	functions map[string]struct{}
	spread    bool
}

func (a *analyzer) visit(n builder.Node, bound map[string]bool) error {
	switch n := n.(type) {
	case *builder.Sequence:
		for _, child := range n.Children {
			if err := a.visit(child, bound); err != nil {
				return err
			}
		}
	case *builder.Loop:
		if err := a.collect(bound, expression(n.Iterable.Snippet())); err != nil {
			return err
		}
		inner := with(bound, n.KeyVar, n.ValueVar)
		a.spread = a.spread || n.Spread
		return a.visit(n.Body, inner)
	case *builder.Conditional:
		for _, branch := range n.Branches {
			if branch.Cond != nil {
				if err := a.collect(bound, expression(branch.Cond.Snippet())); err != nil {
					return err
				}
			}
			if err := a.visit(branch.Body, bound); err != nil {
				return err
			}
		}
	case *builder.Emit:
		content := a.prog.DefaultContent
		if n.Content != nil {
			content = *n.Content
		}
		parsers := []parser{template(a.prog.NameTemplate.Snippet()), template(content.Snippet())}
		if n.Filename != nil {
			parsers = append(parsers, template(n.Filename.Snippet()))
		}
		return a.collect(bound, parsers...)
	}
	return nil
}

func (a *analyzer) collect(bound map[string]bool, parsers ...parser) error {
	c := NewContainer(bound)
	for _, parse := range parsers {
		expr, diags := parse()
		if diags.HasErrors() {
			rng := hcl.Range{Filename: a.prog.Name}
			if d := diags[0]; d.Subject != nil {
				rng = *d.Subject
			}
			return &tmplerr.LoadingError{File: a.prog.Name, Range: rng, Err: diags}
		}
		c.Add(expr)
	}
	for _, name := range c.Free() {
		a.params[name] = struct{}{}
	}
	for _, name := range c.CalledFunctions() {
		a.functions[name] = struct{}{}
	}
	return nil
}

type parser func() (hclsyntax.Expression, hcl.Diagnostics)

func expression(s host.Snippet) parser {
	return func() (hclsyntax.Expression, hcl.Diagnostics) {
		return hclsyntax.ParseExpression([]byte(s.Text), s.Range.Filename, start(s.Range))
	}
}

func template(s host.Snippet) parser {
	return func() (hclsyntax.Expression, hcl.Diagnostics) {
		return hclsyntax.ParseTemplate([]byte(s.Text), s.Range.Filename, start(s.Range))
	}
}

func start(rng hcl.Range) hcl.Pos {
	if rng.Start.Line == 0 {
		return hcl.InitialPos
	}
	return rng.Start
}

func with(bound map[string]bool, names ...string) map[string]bool {
	out := make(map[string]bool, len(bound)+len(names))
	for k := range bound {
		out[k] = true
	}
	for _, name := range names {
		if name != "" {
			out[name] = true
		}
	}
	return out
}

// UnknownFunctions returns, per file, the called functions known does not
// accept. Files without unknown calls are left out.
func UnknownFunctions(reports []Report, known func(string) bool) map[string][]string {
	out := map[string][]string{}
	for _, r := range reports {
		for _, fn := range r.Functions {
			if !known(fn) {
				out[r.File] = append(out[r.File], fn)
			}
		}
	}
	return out
}

// Params merges the parameter names of all reports.
func Params(reports []Report) []string {
	set := map[string]struct{}{}
	for _, r := range reports {
		for _, p := range r.Params {
			set[p] = struct{}{}
		}
	}
	return sortedSet(set)
}

// UnknownFunctionError reports calls to functions no module provides.
type UnknownFunctionError struct {
	File      string
	Functions []string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("%s: unknown function(s) %v", e.File, e.Functions)
}

// CheckFunctions returns an *UnknownFunctionError per file calling
// functions known does not accept, in file order.
func CheckFunctions(reports []Report, known func(string) bool) []error {
	unknown := UnknownFunctions(reports, known)
	files := make([]string, 0, len(unknown))
	for f := range unknown {
		files = append(files, f)
	}
	sort.Strings(files)

	errs := make([]error, 0, len(files))
	for _, f := range files {
		errs = append(errs, &UnknownFunctionError{File: f, Functions: unknown[f]})
	}
	return errs
}
