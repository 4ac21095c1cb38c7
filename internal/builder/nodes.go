package builder

import (
	"sort"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/mondir/internal/host"
	"github.com/specialistvlad/mondir/internal/nodeid"
)

// Node is a directory-level control node. The set of implementations is closed.
type Node interface {
	// Addr returns the node's position in the program tree.
	Addr() nodeid.Address
	node()
}

// Sequence runs its children in order.
type Sequence struct {
	Address  nodeid.Address
	Children []Node
}

// Loop runs Body once per item of Iterable.
type Loop struct {
	Address  nodeid.Address
	KeyVar   string
	ValueVar string
	// Spread binds the attributes of each item instead of the item itself.
	// The body of a spread loop starts with a *Merge.
	Spread   bool
	Iterable Expr
	Body     *Sequence
}

// Branch is one arm of a Conditional. A nil Cond is the else arm.
type Branch struct {
	Cond *Expr
	Body *Sequence
}

// Conditional runs the body of the first branch whose condition holds.
type Conditional struct {
	Address  nodeid.Address
	Branches []Branch
}

// Emit records one output file. Filename and Content override the file's
// name template and default content when set.
type Emit struct {
	Address  nodeid.Address
	Filename *Template
	Content  *Template
	// Range is the position of the thisfile tag.
	Range hcl.Range
}

// Merge spreads the current spread-loop item into the iteration scope.
type Merge struct {
	Address nodeid.Address
}

func (n *Sequence) Addr() nodeid.Address    { return n.Address }
func (n *Loop) Addr() nodeid.Address        { return n.Address }
func (n *Conditional) Addr() nodeid.Address { return n.Address }
func (n *Emit) Addr() nodeid.Address        { return n.Address }
func (n *Merge) Addr() nodeid.Address       { return n.Address }

func (*Sequence) node()    {}
func (*Loop) node()        {}
func (*Conditional) node() {}
func (*Emit) node()        {}
func (*Merge) node()       {}

// Expr is an opaque host expression.
type Expr struct {
	Text  string
	Range hcl.Range
}

// Snippet returns the expression as a host snippet.
func (e Expr) Snippet() host.Snippet {
	return host.Snippet{Text: e.Text, Range: e.Range}
}

// Template is an opaque host template. Its text is assembled from pieces
// of the template file, so positions inside it are mapped back to the file
// through Marks.
type Template struct {
	Text  string
	Range hcl.Range
	Marks []Mark
}

// Mark anchors the byte at Offset in a template's text to Pos in the
// template file.
type Mark struct {
	Offset int
	Pos    hcl.Pos
}

// SourcePos maps a position reported by the host for this template back to
// the template file. The host positions bytes relative to Range.Start.
func (t Template) SourcePos(p hcl.Pos) hcl.Pos {
	off := p.Byte - t.Range.Start.Byte
	if off < 0 || off > len(t.Text) {
		return p
	}
	i := sort.Search(len(t.Marks), func(i int) bool { return t.Marks[i].Offset > off }) - 1
	if i < 0 {
		return p
	}
	m := t.Marks[i]
	pos := m.Pos
	for _, c := range []byte(t.Text[m.Offset:off]) {
		pos.Byte++
		if c == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// SourceRange maps a host range inside this template back to the template
// file.
func (t Template) SourceRange(rng hcl.Range) hcl.Range {
	return hcl.Range{
		Filename: rng.Filename,
		Start:    t.SourcePos(rng.Start),
		End:      t.SourcePos(rng.End),
	}
}

// Snippet returns the template as a host snippet.
func (t Template) Snippet() host.Snippet {
	return host.Snippet{Text: t.Text, Range: t.Range}
}

// Program is the compiled form of one template file.
type Program struct {
	// Name is the template file path relative to the template directory.
	Name string
	// NameTemplate renders the output path; it is the file path itself.
	NameTemplate Template
	// DefaultContent is the file source with every dirlevel block removed.
	DefaultContent Template
	Root           *Sequence
	// HasExplicitDirlevel is set when the source contains a dirlevel tag
	// written by the author rather than one added by canonicalization.
	HasExplicitDirlevel bool
	// Leaves counts the thisfile leaves written in the source. It is zero
	// when the root is the implicit single emission.
	Leaves int
}

// Walk calls fn for n and every node below it, depth first, in program order.
func Walk(n Node, fn func(Node)) {
	fn(n)
	switch n := n.(type) {
	case *Sequence:
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *Loop:
		Walk(n.Body, fn)
	case *Conditional:
		for _, b := range n.Branches {
			Walk(b.Body, fn)
		}
	}
}
