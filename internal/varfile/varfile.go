// Package varfile loads template parameters from variable files and
// command-line assignments. Supported file formats are HCL (.hcl, .tfvars),
// JSON, YAML and TOML; each file must hold a single top-level object.
package varfile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	yaml "github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/specialistvlad/mondir/internal/config"
	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/hcl"
)

// Loader implements config.Loader over an afero filesystem.
type Loader struct {
	fs        afero.Fs
	converter config.Converter
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a loader reading from fsys.
func NewLoader(fsys afero.Fs, converter config.Converter) *Loader {
	return &Loader{fs: fsys, converter: converter}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (config.Params, error) {
	logger := ctxlog.FromContext(ctx)
	params := config.Params{}
	for _, path := range paths {
		vals, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load variable file %s: %w", path, err)
		}
		logger.Debug("Loaded variable file.", "path", path, "params", len(vals))
		params = params.Merge(vals)
	}
	return params, nil
}

func (l *Loader) loadFile(path string) (config.Params, error) {
	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl", ".tfvars":
		return hcl.ParseVarFile(src, path)
	case ".json":
		return decodeCty(src, ctyjson.ImpliedType, ctyjson.Unmarshal)
	case ".yaml", ".yml":
		return decodeCty(src, yaml.ImpliedType, yaml.Unmarshal)
	case ".toml":
		return l.decodeTOML(src)
	default:
		return nil, fmt.Errorf("unsupported variable file extension %q", ext)
	}
}

func decodeCty(
	src []byte,
	implied func([]byte) (cty.Type, error),
	unmarshal func([]byte, cty.Type) (cty.Value, error),
) (config.Params, error) {
	ty, err := implied(src)
	if err != nil {
		return nil, err
	}
	val, err := unmarshal(src, ty)
	if err != nil {
		return nil, err
	}
	return objectParams(val)
}

func (l *Loader) decodeTOML(src []byte) (config.Params, error) {
	var doc map[string]any
	if err := toml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	params := make(config.Params, len(doc))
	for name, raw := range doc {
		val, err := l.converter.ToCtyValue(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		params[name] = val
	}
	return params, nil
}

func objectParams(val cty.Value) (config.Params, error) {
	ty := val.Type()
	if val.IsNull() || !(ty.IsObjectType() || ty.IsMapType()) {
		return nil, fmt.Errorf("top-level value must be an object, got %s", ty.FriendlyName())
	}
	return config.Params(val.AsValueMap()), nil
}

// ParseAssignment parses a `name=value` command-line parameter. The value is
// read as a literal HCL expression when possible and as a string otherwise.
func ParseAssignment(arg string) (string, cty.Value, error) {
	name, raw, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", cty.NilVal, fmt.Errorf("invalid parameter %q: expected name=value", arg)
	}
	return name, hcl.ParseVarValue(raw), nil
}

// ParseAssignments parses a list of `name=value` parameters; later
// assignments win.
func ParseAssignments(args []string) (config.Params, error) {
	params := config.Params{}
	for _, arg := range args {
		name, val, err := ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		params[name] = val
	}
	return params, nil
}

// EnvPrefix marks environment variables that become parameters, e.g.
// MONDIR_VAR_project=demo sets the parameter "project".
const EnvPrefix = "MONDIR_VAR_"

// FromEnviron extracts parameters from environment entries in KEY=value form.
func FromEnviron(environ []string) config.Params {
	params := config.Params{}
	for _, kv := range environ {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok || name == "" {
			continue
		}
		params[name] = hcl.ParseVarValue(raw)
	}
	return params
}
