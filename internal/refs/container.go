// Package refs finds the parameters and functions a directory program uses,
// without running it.
package refs

import (
	"sort"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Container gathers the expressions evaluated in one scope and reports the
// free variables and called functions among them.
type Container struct {
	analyzeOnce sync.Once

	mu          sync.RWMutex
	bound       map[string]bool
	expressions []hcl.Expression

	free      []string
	functions []string
}

// NewContainer creates an empty container for a scope in which the given
// names are bound by enclosing loops.
func NewContainer(bound map[string]bool) *Container {
	return &Container{bound: bound}
}

// Add adds expressions to the container. Nil expressions are ignored.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.analyzeOnce = sync.Once{}
	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

func (c *Container) analyze() {
	c.analyzeOnce.Do(func() {
		c.mu.RLock()
		free, funcs := extract(c.bound, c.expressions...)
		c.mu.RUnlock()

		c.mu.Lock()
		c.free = free
		c.functions = funcs
		c.mu.Unlock()
	})
}

// Free returns the sorted root names of variables that are not bound in
// the container's scope.
func (c *Container) Free() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.free
}

// CalledFunctions returns the sorted names of all functions called.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.functions
}

func extract(bound map[string]bool, exprs ...hcl.Expression) ([]string, []string) {
	free := map[string]struct{}{}
	functions := map[string]struct{}{}

	for _, expr := range exprs {
		for _, traversal := range expr.Variables() {
			if name := traversal.RootName(); !bound[name] {
				free[name] = struct{}{}
			}
		}
		if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
			hclsyntax.VisitAll(syntaxExpr, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					functions[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}
	return sortedSet(free), sortedSet(functions)
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
