// Package casing contributes identifier case conversion functions, handy for
// generating file names and code identifiers from template parameters.
package casing

import (
	"strings"
	"unicode"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/specialistvlad/mondir/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Casers are stateful, so each call gets its own.
func lower() cases.Caser { return cases.Lower(language.Und) }
func title() cases.Caser { return cases.Title(language.Und) }

// Words splits s into words at separators, case changes and letter/digit
// boundaries: "HTTPServer_config-v2" gives ["HTTP", "Server", "config", "v", "2"].
func Words(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func camel(s string, upperFirst bool) string {
	var sb strings.Builder
	for i, w := range Words(s) {
		if i == 0 && !upperFirst {
			sb.WriteString(lower().String(w))
			continue
		}
		sb.WriteString(title().String(w))
	}
	return sb.String()
}

func joined(s, sep string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = lower().String(w)
	}
	return strings.Join(words, sep)
}

func stringFunc(impl func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "str", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(impl(args[0].AsString())), nil
		},
	})
}

// Functions returns the casing functions keyed by template name.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"camelcase":  stringFunc(func(s string) string { return camel(s, false) }),
		"pascalcase": stringFunc(func(s string) string { return camel(s, true) }),
		"snakecase":  stringFunc(func(s string) string { return joined(s, "_") }),
		"kebabcase":  stringFunc(func(s string) string { return joined(s, "-") }),
		"titlecase":  stringFunc(func(s string) string { return title().String(strings.Join(Words(s), " ")) }),
	}
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunctions("casing", Functions())
}
