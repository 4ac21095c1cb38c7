package tags

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Kind identifies what a span of template source is.
type Kind int

const (
	// Text is literal source between directives, including `${ }` interpolations.
	Text Kind = iota
	// HostTag is a template directive owned by the host language: for, endfor, if, else, endif.
	HostTag
	DirLevel
	EndDirLevel
	ThisFile
	EndThisFile
	Filename
	EndFilename
	Content
	EndContent
	// Merge spreads the current loop item into the iteration scope. It has no
	// source text and is only produced by canonicalization.
	Merge
)

var kindNames = map[Kind]string{
	Text:        "text",
	HostTag:     "host tag",
	DirLevel:    "dirlevel",
	EndDirLevel: "enddirlevel",
	ThisFile:    "thisfile",
	EndThisFile: "endthisfile",
	Filename:    "filename",
	EndFilename: "endfilename",
	Content:     "content",
	EndContent:  "endcontent",
	Merge:       "merge",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsMondir reports whether the kind is one of the directory-template tags.
func (k Kind) IsMondir() bool {
	return k >= DirLevel && k <= Merge
}

// closers maps each block-opening kind to the kind that ends it.
var closers = map[Kind]Kind{
	DirLevel: EndDirLevel,
	ThisFile: EndThisFile,
	Filename: EndFilename,
	Content:  EndContent,
}

// Closer returns the kind that ends a block opened by k.
func (k Kind) Closer() (Kind, bool) {
	c, ok := closers[k]
	return c, ok
}

// Loop is a parsed `for` header: `for v in expr`, `for k, v in expr` or `for * in expr`.
type Loop struct {
	KeyVar   string
	ValueVar string
	// Spread is set for the `*` target; the item's attributes then become variables.
	Spread bool
	// Iterable is the iterable expression source.
	Iterable      string
	IterableRange hcl.Range
}

// Target renders the loop target the way it is written in source.
func (l *Loop) Target() string {
	switch {
	case l.Spread:
		return "*"
	case l.KeyVar != "":
		return l.KeyVar + ", " + l.ValueVar
	default:
		return l.ValueVar
	}
}

// Span is one classified region of a template file.
type Span struct {
	Kind Kind
	// Raw is the exact source text, delimiters included. For Text spans it is
	// the literal text after strip markers of neighbouring tags were applied,
	// and Range covers exactly that text.
	Raw string
	// Keyword is the first word of a directive, e.g. "for" or "thisfile".
	Keyword string
	// Args is the directive body after the keyword.
	Args      string
	ArgsRange hcl.Range
	Range     hcl.Range

	StripLeft  bool
	StripRight bool

	// With marks the block form `thisfile with` ... `endthisfile`.
	With bool
	// Loop holds a parsed `thisfile for` header, or the header of a host
	// `for` once canonicalization parsed it.
	Loop *Loop
	// Implicit marks spans synthesized by canonicalization.
	Implicit bool
}

// Opens reports whether the span opens a directory-template block that needs
// a matching end tag.
func (s Span) Opens() bool {
	switch s.Kind {
	case DirLevel, Filename, Content:
		return true
	case ThisFile:
		return s.With
	default:
		return false
	}
}

// Describe renders a short human-readable form of the span for error messages.
func (s Span) Describe() string {
	if s.Kind == Text {
		return "text"
	}
	if s.Raw != "" {
		return s.Raw
	}
	var sb strings.Builder
	sb.WriteString("%{ ")
	sb.WriteString(s.Keyword)
	if s.Args != "" {
		sb.WriteByte(' ')
		sb.WriteString(s.Args)
	}
	sb.WriteString(" }")
	return sb.String()
}
