// Package host declares the capability the directory template needs from its
// host language: evaluate an expression, iterate an iterable expression and
// render a template, each against a set of variables.
package host

import (
	"maps"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Vars is a flat set of variables visible to host evaluation.
type Vars map[string]cty.Value

// Clone returns a shallow copy of v. Values are immutable, so the copy is a
// snapshot.
func (v Vars) Clone() Vars {
	if v == nil {
		return Vars{}
	}
	return maps.Clone(v)
}

// Names returns the variable names in sorted order.
func (v Vars) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snippet is a piece of host source with its location in a template file.
// Range.Filename and Range.Start anchor host diagnostics.
type Snippet struct {
	Text  string
	Range hcl.Range
}

// Item is one element produced by iterating a host value. For sequences Key
// is the index; for mappings it is the attribute name.
type Item struct {
	Key   cty.Value
	Value cty.Value
}

// Host evaluates host-language snippets. Implementations must be safe for
// concurrent use.
type Host interface {
	// Evaluate evaluates an expression.
	Evaluate(s Snippet, vars Vars) (cty.Value, error)
	// Iterate evaluates an expression and returns its items in iteration order.
	Iterate(s Snippet, vars Vars) ([]Item, error)
	// Render renders a template to a string.
	Render(s Snippet, vars Vars) (string, error)
}
