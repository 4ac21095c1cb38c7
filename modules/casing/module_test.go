package casing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestWords(t *testing.T) {
	testCases := []struct {
		in       string
		expected []string
	}{
		{in: "hello world", expected: []string{"hello", "world"}},
		{in: "HTTPServer_config-v2", expected: []string{"HTTP", "Server", "config", "v", "2"}},
		{in: "alreadyCamelCase", expected: []string{"already", "Camel", "Case"}},
		{in: "  ", expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Words(tc.in))
		})
	}
}

func TestFunctions(t *testing.T) {
	testCases := []struct {
		fn       string
		in       string
		expected string
	}{
		{fn: "camelcase", in: "my new-project", expected: "myNewProject"},
		{fn: "pascalcase", in: "my new-project", expected: "MyNewProject"},
		{fn: "snakecase", in: "MyNewProject", expected: "my_new_project"},
		{fn: "kebabcase", in: "MyNewProject", expected: "my-new-project"},
		{fn: "titlecase", in: "my_new_project", expected: "My New Project"},
	}

	fns := Functions()
	for _, tc := range testCases {
		t.Run(tc.fn, func(t *testing.T) {
			fn, ok := fns[tc.fn]
			require.True(t, ok)
			out, err := fn.Call([]cty.Value{cty.StringVal(tc.in)})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.AsString())
		})
	}
}
