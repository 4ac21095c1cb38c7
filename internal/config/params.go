package config

import (
	"maps"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Params are the base variables of a render call.
type Params map[string]cty.Value

// Merge returns a new Params holding p overlaid with each of others in order.
func (p Params) Merge(others ...Params) Params {
	out := maps.Clone(p)
	if out == nil {
		out = Params{}
	}
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
