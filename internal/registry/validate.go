package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/mondir/internal/ctxlog"
)

// Validate checks that every registered function can actually be called from
// a template: its name must be a valid identifier and its signature must be
// usable by the host.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range r.Names() {
		fn := r.functions[name]
		if !hclsyntax.ValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("function '%s' (module '%s'): name is not a valid identifier", name, r.owners[name]))
			continue
		}
		for i, p := range fn.Params() {
			if p.Type == cty.NilType {
				errs = append(errs, fmt.Sprintf("function '%s' (module '%s'): parameter %d has no type", name, r.owners[name], i))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("function registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Function registry validated.", "functions", len(r.functions))
	return nil
}
