package hcl

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/specialistvlad/mondir/internal/host"
)

// Host implements host.Host with HCL native syntax expressions and templates.
type Host struct {
	functions map[string]function.Function
}

var _ host.Host = (*Host)(nil)

// NewHost creates a host whose snippets may call the given functions.
// The map must not be modified afterwards.
func NewHost(functions map[string]function.Function) *Host {
	return &Host{functions: functions}
}

func (h *Host) evalContext(vars host.Vars) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: vars,
		Functions: h.functions,
	}
}

// Evaluate implements host.Host.
func (h *Host) Evaluate(s host.Snippet, vars host.Vars) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(s.Text), s.Range.Filename, startPos(s.Range))
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	val, diags := expr.Value(h.evalContext(vars))
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	val, _ = val.UnmarkDeep()
	return val, nil
}

// Iterate implements host.Host. Sequences yield their index as the key;
// maps and objects yield their keys in lexical order.
func (h *Host) Iterate(s host.Snippet, vars host.Vars) ([]host.Item, error) {
	val, err := h.Evaluate(s, vars)
	if err != nil {
		return nil, err
	}
	switch {
	case val.IsNull():
		return nil, errors.New("cannot iterate over a null value")
	case !val.IsKnown():
		return nil, errors.New("cannot iterate over a value that is not known")
	case !val.CanIterateElements():
		return nil, fmt.Errorf("cannot iterate over a value of type %s", val.Type().FriendlyName())
	}

	items := []host.Item{}
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		items = append(items, host.Item{Key: k, Value: v})
	}
	return items, nil
}

// Render implements host.Host.
func (h *Host) Render(s host.Snippet, vars host.Vars) (string, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(s.Text), s.Range.Filename, startPos(s.Range))
	if diags.HasErrors() {
		return "", diags
	}
	val, diags := expr.Value(h.evalContext(vars))
	if diags.HasErrors() {
		return "", diags
	}
	val, _ = val.UnmarkDeep()
	switch {
	case val.IsNull():
		return "", errors.New("template produced a null value")
	case !val.IsWhollyKnown():
		return "", errors.New("template produced a value that is not known")
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("template result of type %s cannot be used as text: %w", val.Type().FriendlyName(), err)
	}
	return str.AsString(), nil
}

func startPos(rng hcl.Range) hcl.Pos {
	if rng.Start.Line == 0 {
		return hcl.InitialPos
	}
	return rng.Start
}
