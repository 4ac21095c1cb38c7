package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/desugar"
	"github.com/specialistvlad/mondir/internal/nodeid"
	"github.com/specialistvlad/mondir/internal/tags"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// Compile runs the whole front end on one template file: tag extraction,
// canonicalization and the build pass.
func Compile(ctx context.Context, name string, src []byte) (*Program, error) {
	spans, err := tags.Extract(name, src)
	if err != nil {
		return nil, err
	}
	spans, err = desugar.Canonicalize(name, spans)
	if err != nil {
		return nil, err
	}
	return Build(ctx, name, spans)
}

// Build compiles canonical spans into a program. name is the template file
// path relative to the template directory. It fails with a
// *tmplerr.LoadingError when the dirlevel structure is invalid.
func Build(ctx context.Context, name string, spans []tags.Span) (*Program, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building directory program.", "file", name, "spans", len(spans))

	b := &builder{name: name, spans: spans}
	root := &Sequence{Address: nodeid.Root("dirlevel")}
	prog := &Program{
		Name:         name,
		NameTemplate: Template{Text: name, Range: b.fileStart()},
		Root:         root,
	}

	var content text
	for b.pos < len(b.spans) {
		span := b.next()
		switch span.Kind {
		case tags.Text, tags.HostTag:
			content.add(span)
		case tags.DirLevel:
			if !span.Implicit {
				prog.HasExplicitDirlevel = true
			}
			if err := b.parseInto(root, span, isKind(tags.EndDirLevel)); err != nil {
				return nil, err
			}
		default:
			return nil, b.errorf(span.Range, "%s must be inside a dirlevel block", span.Describe())
		}
	}
	prog.DefaultContent = content.template(b.fileStart())
	prog.Leaves = b.leaves

	if b.leaves == 0 {
		logger.Debug("No thisfile leaves found, emitting the file once.", "file", name)
		prog.Root = &Sequence{
			Address:  root.Address,
			Children: []Node{&Emit{Address: root.Address.Child("thisfile", 0)}},
		}
	}

	logger.Debug("Built directory program.",
		"file", name,
		"leaves", prog.Leaves,
		"explicit_dirlevel", prog.HasExplicitDirlevel,
	)
	return prog, nil
}

type builder struct {
	name   string
	spans  []tags.Span
	pos    int
	leaves int
}

func (b *builder) next() tags.Span {
	span := b.spans[b.pos]
	b.pos++
	return span
}

// parseInto appends the nodes found up to the span accepted by stop to seq
// and returns that span. opener is the tag whose block is being parsed.
func (b *builder) parseInto(seq *Sequence, opener tags.Span, stop func(tags.Span) bool) error {
	_, err := b.parseUntil(seq, opener, stop)
	return err
}

func (b *builder) parseUntil(seq *Sequence, opener tags.Span, stop func(tags.Span) bool) (tags.Span, error) {
	for b.pos < len(b.spans) {
		span := b.next()
		if stop(span) {
			return span, nil
		}

		idx := len(seq.Children)
		var (
			n   Node
			err error
		)
		switch span.Kind {
		case tags.Text:
			continue
		case tags.HostTag:
			switch span.Keyword {
			case "for":
				n, err = b.parseLoop(span, seq.Address.Child("for", idx))
			case "if":
				n, err = b.parseConditional(span, seq.Address.Child("if", idx))
			default:
				err = b.errorf(span.Range, "unexpected %s inside %s at line %d",
					span.Describe(), opener.Describe(), opener.Range.Start.Line)
			}
		case tags.ThisFile:
			n, err = b.parseEmit(span, seq.Address.Child("thisfile", idx))
		case tags.Merge:
			n = &Merge{Address: seq.Address.Child("merge", idx)}
		case tags.DirLevel:
			err = b.errorf(span.Range, "dirlevel blocks cannot be nested")
		case tags.Filename, tags.Content:
			err = b.errorf(span.Range, "%s must be inside a %%{ thisfile with } block", span.Describe())
		default:
			err = b.errorf(span.Range, "unexpected %s inside %s at line %d",
				span.Describe(), opener.Describe(), opener.Range.Start.Line)
		}
		if err != nil {
			return tags.Span{}, err
		}
		seq.Children = append(seq.Children, n)
	}
	return tags.Span{}, b.errorf(opener.Range, "%s is never closed", opener.Describe())
}

func (b *builder) parseLoop(span tags.Span, addr nodeid.Address) (*Loop, error) {
	header := span.Loop
	if header == nil {
		var err error
		header, err = tags.ParseLoopHeader(span.Args, span.ArgsRange)
		if err != nil {
			return nil, &tmplerr.LoadingError{File: b.name, Range: span.Range, Err: err}
		}
	}

	loop := &Loop{
		Address:  addr,
		KeyVar:   header.KeyVar,
		ValueVar: header.ValueVar,
		Spread:   header.Spread,
		Iterable: Expr{Text: header.Iterable, Range: header.IterableRange},
		Body:     &Sequence{Address: addr},
	}
	if err := b.parseInto(loop.Body, span, isHost("endfor")); err != nil {
		return nil, err
	}
	return loop, nil
}

func (b *builder) parseConditional(span tags.Span, addr nodeid.Address) (*Conditional, error) {
	if span.Args == "" {
		return nil, b.errorf(span.Range, "%s has no condition", span.Describe())
	}

	cond := &Conditional{Address: addr}
	then := &Sequence{Address: addr.Child("branch", 0)}
	end, err := b.parseUntil(then, span, isHost("else", "endif"))
	if err != nil {
		return nil, err
	}
	cond.Branches = append(cond.Branches, Branch{
		Cond: &Expr{Text: span.Args, Range: span.ArgsRange},
		Body: then,
	})
	if end.Keyword == "endif" {
		return cond, nil
	}

	if end.Args != "" {
		return nil, b.errorf(end.Range, "unsupported %s: else takes no condition", end.Describe())
	}
	otherwise := &Sequence{Address: addr.Child("branch", 1)}
	if err := b.parseInto(otherwise, end, isHost("endif")); err != nil {
		return nil, err
	}
	cond.Branches = append(cond.Branches, Branch{Body: otherwise})
	return cond, nil
}

func (b *builder) parseEmit(span tags.Span, addr nodeid.Address) (*Emit, error) {
	if span.Loop != nil {
		return nil, b.errorf(span.Range, "%s was not canonicalized", span.Describe())
	}
	b.leaves++

	emit := &Emit{Address: addr, Range: span.Range}
	if !span.With {
		return emit, nil
	}

	for b.pos < len(b.spans) {
		inner := b.next()
		switch inner.Kind {
		case tags.EndThisFile:
			return emit, nil
		case tags.Text:
			continue
		case tags.Filename:
			if emit.Filename != nil {
				return nil, b.errorf(inner.Range, "duplicate %s in thisfile block at line %d", inner.Describe(), span.Range.Start.Line)
			}
			t, err := b.parseTemplate(inner, tags.EndFilename)
			if err != nil {
				return nil, err
			}
			emit.Filename = t
		case tags.Content:
			if emit.Content != nil {
				return nil, b.errorf(inner.Range, "duplicate %s in thisfile block at line %d", inner.Describe(), span.Range.Start.Line)
			}
			t, err := b.parseTemplate(inner, tags.EndContent)
			if err != nil {
				return nil, err
			}
			emit.Content = t
		case tags.HostTag:
			return nil, b.errorf(inner.Range, "%s cannot appear directly inside a thisfile block; use it inside filename or content", inner.Describe())
		default:
			return nil, b.errorf(inner.Range, "%s cannot appear inside a thisfile block", inner.Describe())
		}
	}
	return nil, b.errorf(span.Range, "%s is never closed", span.Describe())
}

// parseTemplate collects the host template between opener and its end tag.
func (b *builder) parseTemplate(opener tags.Span, end tags.Kind) (*Template, error) {
	var body text
	for b.pos < len(b.spans) {
		span := b.next()
		switch span.Kind {
		case end:
			t := body.template(hcl.Range{
				Filename: b.name,
				Start:    opener.Range.End,
				End:      span.Range.Start,
			})
			return &t, nil
		case tags.Text, tags.HostTag:
			body.add(span)
		default:
			return nil, b.errorf(span.Range, "%s cannot appear inside %s", span.Describe(), opener.Describe())
		}
	}
	return nil, b.errorf(opener.Range, "%s is never closed", opener.Describe())
}

// text assembles a host template from source spans and remembers where
// each span came from.
type text struct {
	sb    strings.Builder
	marks []Mark
}

func (t *text) add(span tags.Span) {
	if span.Raw == "" {
		return
	}
	t.marks = append(t.marks, Mark{Offset: t.sb.Len(), Pos: span.Range.Start})
	t.sb.WriteString(span.Raw)
}

func (t *text) template(rng hcl.Range) Template {
	return Template{Text: t.sb.String(), Range: rng, Marks: t.marks}
}

func (b *builder) fileStart() hcl.Range {
	start := hcl.Pos{Line: 1, Column: 1, Byte: 0}
	return hcl.Range{Filename: b.name, Start: start, End: start}
}

func (b *builder) errorf(rng hcl.Range, format string, args ...any) error {
	return &tmplerr.LoadingError{File: b.name, Range: rng, Err: fmt.Errorf(format, args...)}
}

func isKind(kind tags.Kind) func(tags.Span) bool {
	return func(s tags.Span) bool { return s.Kind == kind }
}

func isHost(keywords ...string) func(tags.Span) bool {
	return func(s tags.Span) bool {
		if s.Kind != tags.HostTag {
			return false
		}
		for _, kw := range keywords {
			if s.Keyword == kw {
				return true
			}
		}
		return false
	}
}
