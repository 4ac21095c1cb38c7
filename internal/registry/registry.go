package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"sort"

	"github.com/zclconf/go-cty/cty/function"
)

// Module is the interface that all function modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the template functions of a single application instance.
type Registry struct {
	functions map[string]function.Function
	owners    map[string]string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		functions: make(map[string]function.Function),
		owners:    make(map[string]string),
	}
}

// Load registers every module in order.
func (r *Registry) Load(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterFunction makes fn callable from templates as name. owner names the
// contributing module in logs and duplicate reports.
func (r *Registry) RegisterFunction(owner, name string, fn function.Function) {
	if prev, exists := r.owners[name]; exists {
		panic(fmt.Sprintf("template function '%s' already registered by module '%s'", name, prev))
	}
	slog.Debug("Registering template function.", "module", owner, "name", name)
	r.functions[name] = fn
	r.owners[name] = owner
}

// RegisterFunctions registers a batch of functions from one module.
func (r *Registry) RegisterFunctions(owner string, fns map[string]function.Function) {
	for _, name := range sortedKeys(fns) {
		r.RegisterFunction(owner, name, fns[name])
	}
}

// Functions returns a copy of the function table.
func (r *Registry) Functions() map[string]function.Function {
	return maps.Clone(r.functions)
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	return sortedKeys(r.functions)
}

// Owner returns the module that registered name.
func (r *Registry) Owner(name string) (string, bool) {
	owner, ok := r.owners[name]
	return owner, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
