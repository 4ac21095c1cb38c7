package collections

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFunctions_InExpressions(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		expected cty.Value
	}{
		{name: "length", expr: `length(services)`, expected: cty.NumberIntVal(3)},
		{name: "contains", expr: `contains(services, "db")`, expected: cty.True},
		{name: "element", expr: `element(services, 4)`, expected: cty.StringVal("web")},
		{name: "sort", expr: `sort(services)`, expected: cty.ListVal([]cty.Value{
			cty.StringVal("api"), cty.StringVal("db"), cty.StringVal("web"),
		})},
		{name: "keys", expr: `keys(ports)`, expected: cty.ListVal([]cty.Value{
			cty.StringVal("api"), cty.StringVal("web"),
		})},
		{name: "lookup default", expr: `lookup(ports, "db", "none")`, expected: cty.StringVal("none")},
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"services": cty.ListVal([]cty.Value{
				cty.StringVal("api"), cty.StringVal("web"), cty.StringVal("db"),
			}),
			"ports": cty.MapVal(map[string]cty.Value{
				"api": cty.StringVal("8080"),
				"web": cty.StringVal("80"),
			}),
		},
		Functions: Functions(),
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expr, diags := hclsyntax.ParseExpression([]byte(tc.expr), "test.hcl", hcl.InitialPos)
			require.False(t, diags.HasErrors(), diags.Error())

			out, diags := expr.Value(ctx)
			require.False(t, diags.HasErrors(), diags.Error())
			assert.True(t, tc.expected.RawEquals(out), "got %#v", out)
		})
	}
}
