package desugar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mondir/internal/tags"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// shape renders spans as a compact list of kinds and host keywords.
func shape(spans []tags.Span) []string {
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		switch s.Kind {
		case tags.HostTag:
			out = append(out, s.Keyword)
		case tags.ThisFile:
			if s.With {
				out = append(out, "thisfile-with")
				continue
			}
			out = append(out, "thisfile")
		default:
			out = append(out, s.Kind.String())
		}
	}
	return out
}

func canonical(t *testing.T, src string) []tags.Span {
	t.Helper()
	spans, err := tags.Extract("t.txt", []byte(src))
	require.NoError(t, err)
	out, err := Canonicalize("t.txt", spans)
	require.NoError(t, err)
	return out
}

func TestCanonicalize_Shapes(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "no tags",
			src:      "plain ${x}",
			expected: []string{"text"},
		},
		{
			name:     "bare thisfile gets a dirlevel",
			src:      "%{ thisfile }body",
			expected: []string{"dirlevel", "thisfile", "enddirlevel", "text"},
		},
		{
			name:     "loop shorthand",
			src:      "%{ thisfile for n in names }body",
			expected: []string{"dirlevel", "for", "thisfile", "endfor", "enddirlevel", "text"},
		},
		{
			name: "loop shorthand with overrides",
			src:  "%{ thisfile for n in names with }%{ filename }${n}%{ endfilename }%{ endthisfile }body",
			expected: []string{
				"dirlevel", "for", "thisfile-with", "filename", "text", "endfilename",
				"endthisfile", "endfor", "enddirlevel", "text",
			},
		},
		{
			name:     "spread shorthand starts with a merge",
			src:      "%{ thisfile for * in people }",
			expected: []string{"dirlevel", "for", "merge", "thisfile", "endfor", "enddirlevel"},
		},
		{
			name:     "explicit spread loop inside dirlevel gets a merge",
			src:      "%{ dirlevel }%{ for * in people }%{ thisfile }%{ endfor }%{ enddirlevel }",
			expected: []string{"dirlevel", "for", "merge", "thisfile", "endfor", "enddirlevel"},
		},
		{
			name:     "shorthand nested in an explicit dirlevel",
			src:      "%{ dirlevel }%{ if ok }%{ thisfile for n in names }%{ endif }%{ enddirlevel }",
			expected: []string{"dirlevel", "if", "for", "thisfile", "endfor", "endif", "enddirlevel"},
		},
		{
			name: "bare overrides become one implicit emission",
			src:  "%{ filename }a.txt%{ endfilename }body%{ content }x%{ endcontent }",
			expected: []string{
				"text",
				"dirlevel", "thisfile-with",
				"filename", "text", "endfilename",
				"content", "text", "endcontent",
				"endthisfile", "enddirlevel",
			},
		},
		{
			name:     "host directives outside dirlevel are untouched",
			src:      "%{ for x in xs }${x}%{ endfor }%{ thisfile }",
			expected: []string{"for", "text", "endfor", "dirlevel", "thisfile", "enddirlevel"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shape(canonical(t, tc.src)))
		})
	}
}

func TestCanonicalize_SynthesizedLoopHeader(t *testing.T) {
	out := canonical(t, "%{ thisfile for k, v in { a = 1 } }")

	require.Equal(t, tags.HostTag, out[1].Kind)
	loop := out[1].Loop
	require.NotNil(t, loop)
	assert.Equal(t, "k", loop.KeyVar)
	assert.Equal(t, "v", loop.ValueVar)
	assert.Equal(t, "{ a = 1 }", loop.Iterable)
	assert.Equal(t, "k, v in { a = 1 }", out[1].Args)
	assert.True(t, out[1].Implicit)
	assert.Nil(t, out[2].Loop, "the thisfile leaf loses its loop header")
}

func TestCanonicalize_OverrideBodiesKeepHostLoops(t *testing.T) {
	src := "%{ dirlevel }%{ for n in names }%{ thisfile with }%{ content }%{ for x in(n) }${x}%{ endfor }%{ endcontent }%{ endthisfile }%{ endfor }%{ enddirlevel }"
	out := canonical(t, src)

	var loops []*tags.Loop
	for _, span := range out {
		if span.Kind == tags.HostTag && span.Keyword == "for" {
			loops = append(loops, span.Loop)
		}
	}
	require.Len(t, loops, 2)
	require.NotNil(t, loops[0], "the dirlevel loop header is parsed")
	assert.Equal(t, "names", loops[0].Iterable)
	assert.Nil(t, loops[1], "loops in a content body are left to the host")
}

func TestCanonicalize_Idempotent(t *testing.T) {
	sources := []string{
		"plain",
		"%{ thisfile }body",
		"%{ thisfile for * in people with }%{ content }${name}%{ endcontent }%{ endthisfile }",
		"%{ dirlevel }%{ for * in xs }%{ thisfile }%{ endfor }%{ enddirlevel }",
		"%{ filename }a%{ endfilename }",
		"%{ dirlevel }%{ if a }%{ thisfile for x in xs }%{ else }%{ thisfile }%{ endif }%{ enddirlevel }",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			once := canonical(t, src)
			twice, err := Canonicalize("t.txt", once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestCanonicalize_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		src         string
		errContains string
	}{
		{
			name:        "thisfile under a host for",
			src:         "%{ for x in xs }%{ thisfile }%{ endfor }",
			errContains: "outside a dirlevel block",
		},
		{
			name:        "thisfile shorthand under a host if",
			src:         "%{ if a }%{ thisfile for x in xs }%{ endif }",
			errContains: "outside a dirlevel block",
		},
		{
			name:        "dirlevel under a host if",
			src:         "%{ if a }%{ dirlevel }%{ thisfile }%{ enddirlevel }%{ endif }",
			errContains: "outside a dirlevel block",
		},
		{
			name:        "filename under a host if",
			src:         "%{ if a }%{ filename }x%{ endfilename }%{ endif }",
			errContains: "outside a dirlevel block",
		},
		{
			name:        "bare override mixed with thisfile",
			src:         "%{ thisfile }%{ content }x%{ endcontent }",
			errContains: "cannot be combined",
		},
		{
			name:        "bare override mixed with a later dirlevel",
			src:         "%{ filename }x%{ endfilename }%{ dirlevel }%{ thisfile }%{ enddirlevel }",
			errContains: "cannot be combined",
		},
		{
			name:        "bad host loop header inside dirlevel",
			src:         "%{ dirlevel }%{ for xs }%{ thisfile }%{ endfor }%{ enddirlevel }",
			errContains: "invalid for header",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spans, err := tags.Extract("t.txt", []byte(tc.src))
			require.NoError(t, err)

			_, err = Canonicalize("t.txt", spans)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.errContains)
			assert.Equal(t, tmplerr.KindLoading, tmplerr.KindOf(err))
		})
	}
}
