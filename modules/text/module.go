// Package text contributes the string functions available in templates.
package text

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/specialistvlad/mondir/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Functions returns the string functions keyed by template name.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"upper":        stdlib.UpperFunc,
		"lower":        stdlib.LowerFunc,
		"title":        stdlib.TitleFunc,
		"strrev":       stdlib.ReverseFunc,
		"strlen":       stdlib.StrlenFunc,
		"substr":       stdlib.SubstrFunc,
		"join":         stdlib.JoinFunc,
		"split":        stdlib.SplitFunc,
		"trimspace":    stdlib.TrimSpaceFunc,
		"trimprefix":   stdlib.TrimPrefixFunc,
		"trimsuffix":   stdlib.TrimSuffixFunc,
		"chomp":        stdlib.ChompFunc,
		"format":       stdlib.FormatFunc,
		"formatlist":   stdlib.FormatListFunc,
		"replace":      stdlib.ReplaceFunc,
		"regex":        stdlib.RegexFunc,
		"regexreplace": stdlib.RegexReplaceFunc,
	}
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunctions("text", Functions())
}
