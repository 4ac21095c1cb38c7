package executor

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/mondir/internal/host"
)

// Scope is one link in a chain of variable scopes. Lookups resolve from the
// innermost scope outwards. A scope is only written by the goroutine that
// created it.
type Scope struct {
	parent *Scope
	vars   host.Vars
	// item is the current element of a spread loop, waiting for its merge.
	item *cty.Value
}

// NewScope creates a root scope over base. base is never modified.
func NewScope(base host.Vars) *Scope {
	return &Scope{vars: base}
}

// Child returns a new empty scope nested in s.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s}
}

// Set binds name in this scope, shadowing any outer binding.
func (s *Scope) Set(name string, v cty.Value) {
	if s.vars == nil {
		s.vars = host.Vars{}
	}
	s.vars[name] = v
}

// Lookup resolves name from the innermost scope outwards.
func (s *Scope) Lookup(name string) (cty.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return cty.NilVal, false
}

// Flatten returns a new map holding every visible binding.
func (s *Scope) Flatten() host.Vars {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := host.Vars{}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].vars {
			out[k] = v
		}
	}
	return out
}

// Merge binds each attribute of the pending spread item in this scope.
// Items that are not objects or maps, or are null or unknown, bind nothing.
// It reports how many names were bound.
func (s *Scope) Merge() int {
	if s.item == nil {
		return 0
	}
	item := *s.item
	s.item = nil

	ty := item.Type()
	if !(ty.IsObjectType() || ty.IsMapType()) || item.IsNull() || !item.IsKnown() {
		return 0
	}
	attrs := item.AsValueMap()
	for name, v := range attrs {
		s.Set(name, v)
	}
	return len(attrs)
}
