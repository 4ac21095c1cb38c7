package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mondir/internal/cli"
)

func TestRun_RendersDirectory(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tmpl := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	err := os.WriteFile(filepath.Join(tmpl, "hello-${who}.txt"), []byte("Hello ${who}!"), 0o600)
	require.NoError(t, err, "failed to set up template file")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err = run(context.Background(), stdout, stderr, []string{"render", tmpl, out, "--var", "who=world"})

	// --- Assert ---
	require.NoError(t, err, "stderr: %s", stderr.String())
	data, err := os.ReadFile(filepath.Join(out, "hello-world.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello world!", string(data))
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Help should print usage and return a nil error.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--help"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"render", "--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	exitErr, ok := err.(*cli.ExitError)
	require.True(t, ok, "expected *cli.ExitError, got %T", err)
	require.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
