// Package env_vars contributes the env function, which reads process
// environment variables from templates.
package env_vars

import (
	"fmt"
	"os"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/specialistvlad/mondir/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Lookup replaces os.LookupEnv when set.
	Lookup func(string) (string, bool)
}

// EnvFunc builds `env(name)` / `env(name, default)`. A missing variable
// without a default is an error.
func EnvFunc(lookup func(string) (string, bool)) function.Function {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return function.New(&function.Spec{
		Params:   []function.Parameter{{Name: "name", Type: cty.String}},
		VarParam: &function.Parameter{Name: "default", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if len(args) > 2 {
				return cty.NilVal, fmt.Errorf("env takes at most one default, got %d", len(args)-1)
			}
			name := args[0].AsString()
			if v, ok := lookup(name); ok {
				return cty.StringVal(v), nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return cty.NilVal, fmt.Errorf("environment variable %q is not set", name)
		},
	})
}

// Register registers the function with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("env_vars", "env", EnvFunc(m.Lookup))
}
