// Package tags finds the directory-template tags in a template file.
//
// A template file is host-language template text (HCL native template
// syntax) in which some `%{ ... }` directives belong to the directory
// template rather than to the host: dirlevel, thisfile, filename, content
// and their end tags. Extract splits the file into an ordered list of spans
// without evaluating anything, so the rest of the pipeline can work on
// structure alone.
package tags

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/mondir/internal/tmplerr"
)

var hostKeywords = map[string]bool{
	"for":    true,
	"endfor": true,
	"if":     true,
	"else":   true,
	"endif":  true,
}

var mondirKeywords = map[string]Kind{
	"dirlevel":    DirLevel,
	"enddirlevel": EndDirLevel,
	"thisfile":    ThisFile,
	"endthisfile": EndThisFile,
	"filename":    Filename,
	"endfilename": EndFilename,
	"content":     Content,
	"endcontent":  EndContent,
}

// Extract scans src and returns its spans in source order. It fails with a
// *tmplerr.LoadingError when a directive is malformed or the
// directory-template tags are not properly nested.
//
// Concatenating the Raw text of all returned spans gives back src, except
// for whitespace removed by `~` strip markers on directory-template tags.
func Extract(filename string, src []byte) ([]Span, error) {
	s := &scanner{
		filename: filename,
		src:      string(src),
		lines:    lineStarts(src),
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	s.applyStripMarkers()
	if err := checkNesting(filename, s.spans); err != nil {
		return nil, err
	}
	return s.spans, nil
}

type scanner struct {
	filename string
	src      string
	lines    []int
	spans    []Span
}

func (s *scanner) scan() error {
	textStart := 0
	for i := 0; i < len(s.src); {
		rest := s.src[i:]
		switch {
		case strings.HasPrefix(rest, "$${"), strings.HasPrefix(rest, "%%{"):
			i += 3
		case strings.HasPrefix(rest, "${"):
			end, err := skipSequence(s.src, i+2)
			if err != nil {
				return tmplerr.Loadingf(s.filename, s.rangeOf(i, i+2), "%v: interpolation is never closed", err)
			}
			i = end + 1
		case strings.HasPrefix(rest, "%{"):
			end, err := skipSequence(s.src, i+2)
			if err != nil {
				return tmplerr.Loadingf(s.filename, s.rangeOf(i, i+2), "%v: directive is never closed", err)
			}
			s.addText(textStart, i)
			span, err := s.directive(i, end+1)
			if err != nil {
				return err
			}
			s.spans = append(s.spans, span)
			i = end + 1
			textStart = i
		default:
			i++
		}
	}
	s.addText(textStart, len(s.src))
	return nil
}

func (s *scanner) addText(start, end int) {
	if start >= end {
		return
	}
	s.spans = append(s.spans, Span{
		Kind:  Text,
		Raw:   s.src[start:end],
		Range: s.rangeOf(start, end),
	})
}

// directive classifies the `%{ ... }` sequence at src[start:end].
func (s *scanner) directive(start, end int) (Span, error) {
	span := Span{
		Kind:  HostTag,
		Raw:   s.src[start:end],
		Range: s.rangeOf(start, end),
	}

	a, b := start+2, end-1
	if a < b && s.src[a] == '~' {
		span.StripLeft = true
		a++
	}
	if a < b && s.src[b-1] == '~' {
		span.StripRight = true
		b--
	}
	for a < b && isSpace(s.src[a]) {
		a++
	}
	for b > a && isSpace(s.src[b-1]) {
		b--
	}

	kw := a
	for kw < b && isWordChar(s.src[kw]) {
		kw++
	}
	span.Keyword = s.src[a:kw]
	argsStart := kw
	for argsStart < b && isSpace(s.src[argsStart]) {
		argsStart++
	}
	span.Args = s.src[argsStart:b]
	span.ArgsRange = s.rangeOf(argsStart, b)

	if hostKeywords[span.Keyword] {
		return span, nil
	}
	kind, ok := mondirKeywords[span.Keyword]
	if !ok {
		return Span{}, tmplerr.Loadingf(s.filename, span.Range, "unknown directive %q", span.Keyword)
	}
	span.Kind = kind

	if kind == ThisFile {
		with, loop, err := parseThisFileArgs(span.Args, span.ArgsRange)
		if err != nil {
			return Span{}, &tmplerr.LoadingError{File: s.filename, Range: span.Range, Err: err}
		}
		span.With = with
		span.Loop = loop
		return span, nil
	}
	if span.Args != "" {
		return Span{}, tmplerr.Loadingf(s.filename, span.Range, "unexpected %q after %s", span.Args, span.Keyword)
	}
	return span, nil
}

func (s *scanner) rangeOf(start, end int) hcl.Range {
	return hcl.Range{Filename: s.filename, Start: s.pos(start), End: s.pos(end)}
}

func (s *scanner) pos(offset int) hcl.Pos {
	line := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	return hcl.Pos{Line: line + 1, Column: offset - s.lines[line] + 1, Byte: offset}
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func isWordChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// applyStripMarkers removes the whitespace that `~` markers on
// directory-template tags ask for. Host tags keep their markers and are
// handled by the host at render time.
//
// The host template scanner ends every literal token at a line break and a
// marker only trims its adjacent token, so trimming never crosses more than
// one line break.
func (s *scanner) applyStripMarkers() {
	for i, span := range s.spans {
		if !span.Kind.IsMondir() {
			continue
		}
		if span.StripLeft && i > 0 && s.spans[i-1].Kind == Text {
			prev := &s.spans[i-1]
			raw := trimTrailingLine(prev.Raw)
			prev.Raw, prev.Range = raw, s.rangeOf(prev.Range.Start.Byte, prev.Range.Start.Byte+len(raw))
		}
		if span.StripRight && i+1 < len(s.spans) && s.spans[i+1].Kind == Text {
			next := &s.spans[i+1]
			raw := trimLeadingLine(next.Raw)
			next.Raw, next.Range = raw, s.rangeOf(next.Range.End.Byte-len(raw), next.Range.End.Byte)
		}
	}
}

// trimLeadingLine removes leading whitespace up to and including the first
// line break.
func trimLeadingLine(text string) string {
	line, rest := text, ""
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line, rest = text[:i+1], text[i+1:]
	}
	return strings.TrimLeftFunc(line, unicode.IsSpace) + rest
}

// trimTrailingLine removes trailing whitespace from the last line of text,
// including that line's own line break.
func trimTrailingLine(text string) string {
	end := len(text)
	if strings.HasSuffix(text, "\n") {
		end--
	}
	start := strings.LastIndexByte(text[:end], '\n') + 1
	return text[:start] + strings.TrimRightFunc(text[start:], unicode.IsSpace)
}

// checkNesting verifies that directory-template blocks are balanced.
func checkNesting(filename string, spans []Span) error {
	var open []Span
	for _, span := range spans {
		switch {
		case span.Opens():
			open = append(open, span)
		case span.Kind == EndDirLevel, span.Kind == EndThisFile, span.Kind == EndFilename, span.Kind == EndContent:
			if len(open) == 0 {
				return tmplerr.Loadingf(filename, span.Range, "unexpected %s without an opening tag", span.Describe())
			}
			top := open[len(open)-1]
			if want, _ := top.Kind.Closer(); want != span.Kind {
				return tmplerr.Loadingf(filename, span.Range, "unexpected %s: %s opened at line %d is still open",
					span.Describe(), top.Describe(), top.Range.Start.Line)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		top := open[len(open)-1]
		want, _ := top.Kind.Closer()
		return tmplerr.Loadingf(filename, top.Range, "%s is never closed with %%{ %s }", top.Describe(), want)
	}
	return nil
}
