// Package encoding contributes JSON and YAML functions available in templates.
package encoding

import (
	yaml "github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/specialistvlad/mondir/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Functions returns the encoding functions keyed by template name.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"jsonencode": stdlib.JSONEncodeFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"yamlencode": yaml.YAMLEncodeFunc,
		"yamldecode": yaml.YAMLDecodeFunc,
	}
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunctions("encoding", Functions())
}
