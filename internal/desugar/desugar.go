// Package desugar rewrites the shorthand forms of directory-template tags
// into canonical form, where every thisfile sits inside a dirlevel block,
// carries no loop header, and every spread loop body starts with a merge.
//
// The rewrite is purely syntactic: it moves and synthesizes spans but never
// looks at expression values. Canonical input is returned unchanged.
package desugar

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/mondir/internal/tags"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// frame tracks an open directory-template block and the spans that have to
// be emitted right after its end tag.
type frame struct {
	span    tags.Span
	closers []tags.Span
}

type canonicalizer struct {
	filename string
	out      []tags.Span
	open     []frame
	// hostDepth counts host for/if blocks open outside any dirlevel.
	hostDepth int
	hostOpen  []tags.Span

	overrides []tags.Span
	firstBare *tags.Span
	explicit  *tags.Span
}

// Canonicalize returns the canonical form of spans. It fails with a
// *tmplerr.LoadingError when a shorthand appears where its meaning is
// undefined: under a host directive outside dirlevel, or bare filename and
// content tags mixed with thisfile or dirlevel tags.
func Canonicalize(filename string, spans []tags.Span) ([]tags.Span, error) {
	c := &canonicalizer{filename: filename, out: make([]tags.Span, 0, len(spans))}
	for i := 0; i < len(spans); i++ {
		var err error
		if len(c.open) == 0 {
			i, err = c.topLevel(spans, i)
		} else {
			err = c.nested(spans, i)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c.out, nil
}

// topLevel handles spans[i] outside of any directory-template block and
// returns the index of the last span it consumed.
func (c *canonicalizer) topLevel(spans []tags.Span, i int) (int, error) {
	span := spans[i]
	switch span.Kind {
	case tags.HostTag:
		c.trackHost(span)
		c.out = append(c.out, span)
	case tags.DirLevel:
		if err := c.checkNotUnderHost(span); err != nil {
			return i, err
		}
		c.noteBlock(span)
		c.open = append(c.open, frame{span: span})
		c.out = append(c.out, span)
	case tags.ThisFile:
		if err := c.checkNotUnderHost(span); err != nil {
			return i, err
		}
		c.noteBlock(span)
		wrapper := implicit(tags.DirLevel, span.Range)
		c.out = append(c.out, wrapper)
		closers := append(c.openThisFile(span), implicit(tags.EndDirLevel, span.Range))
		if span.With {
			c.open = append(c.open, frame{span: span, closers: closers})
		} else {
			c.out = append(c.out, closers...)
		}
	case tags.Filename, tags.Content:
		if err := c.checkNotUnderHost(span); err != nil {
			return i, err
		}
		end := matchingEnd(spans, i)
		if c.firstBare == nil {
			c.firstBare = &spans[i]
		}
		c.overrides = append(c.overrides, spans[i:end+1]...)
		return end, nil
	case tags.Merge:
		return i, tmplerr.Loadingf(c.filename, span.Range, "merge can only appear inside a dirlevel block")
	default:
		c.out = append(c.out, span)
	}
	return i, nil
}

// nested handles spans[i] inside an open directory-template block.
func (c *canonicalizer) nested(spans []tags.Span, i int) error {
	span := spans[i]
	switch {
	case span.Kind == tags.ThisFile:
		closers := c.openThisFile(span)
		if span.With {
			c.open = append(c.open, frame{span: span, closers: closers})
		} else {
			c.out = append(c.out, closers...)
		}
		return nil
	case span.Kind == tags.HostTag && span.Keyword == "for" && c.drivesEmissions():
		if span.Loop == nil {
			loop, err := tags.ParseLoopHeader(span.Args, span.ArgsRange)
			if err != nil {
				return &tmplerr.LoadingError{File: c.filename, Range: span.Range, Err: err}
			}
			span.Loop = loop
		}
		c.out = append(c.out, span)
		if span.Loop.Spread && (i+1 >= len(spans) || spans[i+1].Kind != tags.Merge) {
			c.out = append(c.out, implicit(tags.Merge, span.Range))
		}
		return nil
	case span.Opens():
		c.open = append(c.open, frame{span: span})
		c.out = append(c.out, span)
		return nil
	case isEnd(span.Kind):
		top := c.open[len(c.open)-1]
		c.open = c.open[:len(c.open)-1]
		c.out = append(c.out, span)
		c.out = append(c.out, top.closers...)
		return nil
	default:
		c.out = append(c.out, span)
		return nil
	}
}

// openThisFile appends the canonical opening of a thisfile tag and returns
// the spans that close what it opened, excluding the thisfile block itself.
func (c *canonicalizer) openThisFile(span tags.Span) []tags.Span {
	if span.Loop == nil {
		c.out = append(c.out, span)
		return nil
	}

	loop := *span.Loop
	forTag := implicit(tags.HostTag, span.Range)
	forTag.Keyword = "for"
	forTag.Args = fmt.Sprintf("%s in %s", loop.Target(), loop.Iterable)
	forTag.Raw = fmt.Sprintf("%%{ for %s }", forTag.Args)
	forTag.Loop = &loop
	c.out = append(c.out, forTag)
	if loop.Spread {
		c.out = append(c.out, implicit(tags.Merge, span.Range))
	}

	leaf := span
	leaf.Loop = nil
	leaf.Implicit = true
	c.out = append(c.out, leaf)

	endFor := implicit(tags.HostTag, span.Range)
	endFor.Keyword = "endfor"
	endFor.Raw = "%{ endfor }"
	return []tags.Span{endFor}
}

// finish appends the implicit emission built from bare top-level overrides.
func (c *canonicalizer) finish() error {
	if len(c.overrides) == 0 {
		return nil
	}
	if c.explicit != nil {
		return tmplerr.Loadingf(c.filename, c.firstBare.Range,
			"bare %s cannot be combined with %s at line %d; move it inside a %%{ thisfile with } block",
			c.firstBare.Describe(), c.explicit.Describe(), c.explicit.Range.Start.Line)
	}

	rng := c.firstBare.Range
	with := implicit(tags.ThisFile, rng)
	with.Keyword = "thisfile"
	with.Args = "with"
	with.With = true

	c.out = append(c.out, implicit(tags.DirLevel, rng), with)
	c.out = append(c.out, c.overrides...)
	c.out = append(c.out, implicit(tags.EndThisFile, rng), implicit(tags.EndDirLevel, rng))
	return nil
}

func (c *canonicalizer) trackHost(span tags.Span) {
	switch span.Keyword {
	case "for", "if":
		c.hostDepth++
		c.hostOpen = append(c.hostOpen, span)
	case "endfor", "endif":
		if c.hostDepth > 0 {
			c.hostDepth--
			c.hostOpen = c.hostOpen[:len(c.hostOpen)-1]
		}
	}
}

func (c *canonicalizer) checkNotUnderHost(span tags.Span) error {
	if c.hostDepth == 0 {
		return nil
	}
	host := c.hostOpen[len(c.hostOpen)-1]
	return tmplerr.Loadingf(c.filename, span.Range,
		"%s cannot appear inside %s (line %d) outside a dirlevel block",
		span.Describe(), host.Describe(), host.Range.Start.Line)
}

func (c *canonicalizer) noteBlock(span tags.Span) {
	if c.explicit == nil {
		s := span
		c.explicit = &s
	}
}

// drivesEmissions reports whether a host loop opened now belongs to the
// directory program: the innermost open block is a dirlevel. Loops inside
// filename and content bodies are plain host template text.
func (c *canonicalizer) drivesEmissions() bool {
	return len(c.open) > 0 && c.open[len(c.open)-1].span.Kind == tags.DirLevel
}

func implicit(kind tags.Kind, rng hcl.Range) tags.Span {
	return tags.Span{Kind: kind, Keyword: kind.String(), Range: rng, Implicit: true}
}

func isEnd(kind tags.Kind) bool {
	switch kind {
	case tags.EndDirLevel, tags.EndThisFile, tags.EndFilename, tags.EndContent:
		return true
	}
	return false
}

// matchingEnd returns the index of the end tag closing the block opened at
// spans[i]. Extract guarantees the block is balanced.
func matchingEnd(spans []tags.Span, i int) int {
	depth := 0
	for j := i; j < len(spans); j++ {
		switch {
		case spans[j].Opens():
			depth++
		case isEnd(spans[j].Kind):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(spans) - 1
}
