package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a parameter loader.
type Loader interface {
	// Load reads parameters from the given files. Later files override
	// earlier ones.
	Load(ctx context.Context, paths ...string) (Params, error)
}

// Converter is the interface for turning natively decoded data into cty
// values. It bridges generic decoders (TOML) and the template engine.
type Converter interface {
	// ToCtyValue converts a native Go value (like a map[string]any) into its
	// equivalent cty.Value.
	ToCtyValue(v any) (cty.Value, error)
}
