package env_vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestEnvFunc(t *testing.T) {
	env := map[string]string{"HOME": "/home/me"}
	fn := EnvFunc(func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	})

	testCases := []struct {
		name        string
		args        []cty.Value
		expected    string
		errContains string
	}{
		{name: "set", args: []cty.Value{cty.StringVal("HOME")}, expected: "/home/me"},
		{name: "default", args: []cty.Value{cty.StringVal("USER"), cty.StringVal("nobody")}, expected: "nobody"},
		{name: "missing", args: []cty.Value{cty.StringVal("USER")}, errContains: `"USER" is not set`},
		{
			name:        "too many defaults",
			args:        []cty.Value{cty.StringVal("USER"), cty.StringVal("a"), cty.StringVal("b")},
			errContains: "at most one default",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := fn.Call(tc.args)
			if tc.errContains != "" {
				assert.ErrorContains(t, err, tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.AsString())
		})
	}
}

func TestEnvFunc_DefaultsToProcessEnvironment(t *testing.T) {
	t.Setenv("MONDIR_TEST_VALUE", "42")

	out, err := EnvFunc(nil).Call([]cty.Value{cty.StringVal("MONDIR_TEST_VALUE")})
	require.NoError(t, err)
	assert.Equal(t, "42", out.AsString())
}
