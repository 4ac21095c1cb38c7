package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/mondir/internal/host"
	"github.com/specialistvlad/mondir/internal/testutil"
)

func seq(n int) cty.Value {
	out := make([]cty.Value, n)
	for i := range out {
		out[i] = cty.StringVal(fmt.Sprint(i))
	}
	return cty.TupleVal(out)
}

func TestRun_CountingProperties(t *testing.T) {
	h := testutil.NewHost(t)
	nested := testutil.Compile(t, "nested.txt",
		"%{ dirlevel }%{ for x in xs }%{ for y in ys }%{ thisfile }%{ endfor }%{ endfor }%{ enddirlevel }")
	gated := testutil.Compile(t, "gated.txt",
		"%{ dirlevel }%{ for f in flags }%{ if f }%{ thisfile }%{ endif }%{ endfor }%{ enddirlevel }")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("nested loops emit the product of their lengths", prop.ForAll(
		func(m, n int) bool {
			ems, err := Run(context.Background(), nested, h, host.Vars{"xs": seq(m), "ys": seq(n)})
			return err == nil && len(ems) == m*n
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
	))

	properties.Property("a gated leaf fires once per true flag", prop.ForAll(
		func(flags []bool) bool {
			vals := make([]cty.Value, len(flags))
			want := 0
			for i, f := range flags {
				vals[i] = cty.BoolVal(f)
				if f {
					want++
				}
			}
			ems, err := Run(context.Background(), gated, h, host.Vars{"flags": cty.TupleVal(vals)})
			return err == nil && len(ems) == want
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
