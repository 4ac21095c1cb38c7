package app

import (
	"os"
	"testing"

	"github.com/spf13/afero"

	"github.com/specialistvlad/mondir/internal/testutil"
)

// SetupAppTest creates a new app instance over fsys with a debug logger
// writing into the returned buffer and an empty environment.
func SetupAppTest(t *testing.T, cfg Config, fsys afero.Fs, opts ...Option) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	opts = append([]Option{WithFs(fsys), WithEnviron(nil)}, opts...)
	testApp := NewApp(logBuffer, validated, opts...)

	t.Cleanup(func() {
		if os.Getenv("MONDIR_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
