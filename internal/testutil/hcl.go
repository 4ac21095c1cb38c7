package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mondir/internal/builder"
	"github.com/specialistvlad/mondir/internal/hcl"
	"github.com/specialistvlad/mondir/internal/registry"
	"github.com/specialistvlad/mondir/modules/casing"
	"github.com/specialistvlad/mondir/modules/collections"
	"github.com/specialistvlad/mondir/modules/encoding"
	"github.com/specialistvlad/mondir/modules/text"
)

// NewHost returns an HCL host with the standard function modules. The env
// function is left out so tests do not depend on the process environment.
func NewHost(t *testing.T) *hcl.Host {
	t.Helper()
	reg := registry.New().Load(
		&text.Module{},
		&collections.Module{},
		&encoding.Module{},
		&casing.Module{},
	)
	require.NoError(t, reg.Validate(context.Background()))
	return hcl.NewHost(reg.Functions())
}

// Compile compiles src as the template file name and fails the test on error.
func Compile(t *testing.T, name, src string) *builder.Program {
	t.Helper()
	prog, err := builder.Compile(context.Background(), name, []byte(src))
	require.NoError(t, err)
	return prog
}
