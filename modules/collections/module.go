// Package collections contributes list and map functions available in templates.
package collections

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/specialistvlad/mondir/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Functions returns the collection functions keyed by template name.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"length":   stdlib.LengthFunc,
		"keys":     stdlib.KeysFunc,
		"values":   stdlib.ValuesFunc,
		"merge":    stdlib.MergeFunc,
		"concat":   stdlib.ConcatFunc,
		"range":    stdlib.RangeFunc,
		"flatten":  stdlib.FlattenFunc,
		"distinct": stdlib.DistinctFunc,
		"contains": stdlib.ContainsFunc,
		"element":  stdlib.ElementFunc,
		"lookup":   stdlib.LookupFunc,
		"reverse":  stdlib.ReverseListFunc,
		"sort":     stdlib.SortFunc,
		"coalesce": stdlib.CoalesceFunc,
		"compact":  stdlib.CompactFunc,
		"slice":    stdlib.SliceFunc,
		"zipmap":   stdlib.ZipmapFunc,
	}
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunctions("collections", Functions())
}
