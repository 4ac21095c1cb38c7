package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

type fakeModule struct {
	name string
	fns  map[string]function.Function
}

func (m fakeModule) Register(r *Registry) {
	r.RegisterFunctions(m.name, m.fns)
}

func TestRegistry_LoadAndLookup(t *testing.T) {
	r := New().Load(
		fakeModule{name: "a", fns: map[string]function.Function{"upper": stdlib.UpperFunc}},
		fakeModule{name: "b", fns: map[string]function.Function{"lower": stdlib.LowerFunc, "strlen": stdlib.StrlenFunc}},
	)

	assert.Equal(t, []string{"lower", "strlen", "upper"}, r.Names())
	owner, ok := r.Owner("strlen")
	require.True(t, ok)
	assert.Equal(t, "b", owner)

	fns := r.Functions()
	delete(fns, "upper")
	assert.Len(t, r.Functions(), 3, "Functions returns a copy")
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterFunction("a", "upper", stdlib.UpperFunc)

	assert.PanicsWithValue(t,
		"template function 'upper' already registered by module 'a'",
		func() { r.RegisterFunction("b", "upper", stdlib.UpperFunc) },
	)
}

func TestRegistry_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		fnName      string
		fn          function.Function
		errContains string
	}{
		{name: "valid", fnName: "upper", fn: stdlib.UpperFunc},
		{name: "invalid identifier", fnName: "to upper", fn: stdlib.UpperFunc, errContains: "not a valid identifier"},
		{
			name:   "untyped parameter",
			fnName: "broken",
			fn: function.New(&function.Spec{
				Params: []function.Parameter{{Name: "x"}},
				Type:   function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
					return cty.StringVal(""), nil
				},
			}),
			errContains: "parameter 0 has no type",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New()
			r.RegisterFunction("test", tc.fnName, tc.fn)
			err := r.Validate(context.Background())
			if tc.errContains == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.errContains)
		})
	}
}
