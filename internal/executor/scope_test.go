package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/mondir/internal/host"
)

func TestScope_LookupAndShadowing(t *testing.T) {
	base := host.Vars{"name": cty.StringVal("base"), "only_base": cty.True}
	root := NewScope(base)
	child := root.Child()
	child.Set("name", cty.StringVal("child"))

	v, ok := child.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "child", v.AsString())

	v, ok = root.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "base", v.AsString(), "child bindings do not leak outwards")

	_, ok = child.Lookup("missing")
	assert.False(t, ok)

	flat := child.Flatten()
	assert.Equal(t, []string{"name", "only_base"}, flat.Names())
	assert.Equal(t, "child", flat["name"].AsString())
	assert.Equal(t, "base", base["name"].AsString(), "base is never written")
}

func TestScope_Merge(t *testing.T) {
	testCases := []struct {
		name     string
		item     cty.Value
		expected int
	}{
		{
			name:     "object",
			item:     cty.ObjectVal(map[string]cty.Value{"a": cty.True, "b": cty.False}),
			expected: 2,
		},
		{
			name:     "map",
			item:     cty.MapVal(map[string]cty.Value{"a": cty.True}),
			expected: 1,
		},
		{name: "string is a no-op", item: cty.StringVal("x")},
		{name: "list is a no-op", item: cty.ListVal([]cty.Value{cty.True})},
		{name: "null object is a no-op", item: cty.NullVal(cty.EmptyObject)},
		{name: "unknown is a no-op", item: cty.UnknownVal(cty.Map(cty.String))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sc := NewScope(nil).Child()
			item := tc.item
			sc.item = &item

			assert.Equal(t, tc.expected, sc.Merge())
			assert.Len(t, sc.Flatten(), tc.expected)
			assert.Zero(t, sc.Merge(), "a pending item is merged once")
		})
	}
}
