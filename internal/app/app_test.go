package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mondir/internal/output"
	"github.com/specialistvlad/mondir/internal/testutil"
	"github.com/specialistvlad/mondir/internal/tmplerr"
	"github.com/specialistvlad/mondir/modules/text"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Config
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			cfg:  Config{TemplateDir: "t", OutputDir: "o"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "text", cfg.LogFormat)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, 1, cfg.Workers)
			},
		},
		{
			name: "dry run needs no output",
			cfg:  Config{TemplateDir: "t", DryRun: true, Workers: 4},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4, cfg.Workers)
			},
		},
		{name: "missing template dir", cfg: Config{OutputDir: "o"}, errContains: "template directory is required"},
		{name: "missing output dir", cfg: Config{TemplateDir: "t"}, errContains: "output directory is required"},
		{name: "same dirs", cfg: Config{TemplateDir: "t", OutputDir: "./t/"}, errContains: "must differ"},
		{name: "bad format", cfg: Config{TemplateDir: "t", OutputDir: "o", LogFormat: "xml"}, errContains: "invalid log format"},
		{name: "bad level", cfg: Config{TemplateDir: "t", OutputDir: "o", LogLevel: "loud"}, errContains: "invalid log level"},
		{name: "negative workers", cfg: Config{TemplateDir: "t", OutputDir: "o", Workers: -1}, errContains: "workers"},
		{name: "negative timeout", cfg: Config{TemplateDir: "t", OutputDir: "o", NotifyTimeout: -time.Second}, errContains: "notify timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.errContains != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tc.errContains)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestNewApp_RegistersCoreModules(t *testing.T) {
	a, _ := SetupAppTest(t, Config{TemplateDir: "/t", OutputDir: "/o"}, afero.NewMemMapFs())

	for _, name := range []string{"upper", "length", "jsonencode", "yamlencode", "snakecase", "env"} {
		_, ok := a.Registry().Owner(name)
		assert.True(t, ok, "function %q should be registered", name)
	}
}

func TestRun_RendersWithParameterSources(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WriteTree(t, fsys, "/", map[string]string{
		"tmpl/${project}/greeting-for-${name}.txt": "%{ thisfile for name in names ~}\nHello ${name} from ${upper(project)} (${stage})",
		"vars/base.yaml":  "names: [Graham, Michael]\nproject: base\nstage: dev\n",
		"vars/over.toml":  "project = \"circus\"\n",
	})

	a, logs := SetupAppTest(t, Config{
		TemplateDir: "/tmpl",
		OutputDir:   "/out",
		VarFiles:    []string{"/vars/base.yaml", "/vars/over.toml"},
		Vars:        []string{"stage=prod"},
	}, fsys, WithEnviron([]string{"MONDIR_VAR_stage=env", "MONDIR_VAR_extra=1"}))

	results, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, output.Created, results[0].Status)

	assert.Equal(t, map[string]string{
		"circus/greeting-for-Graham.txt":  "Hello Graham from CIRCUS (prod)",
		"circus/greeting-for-Michael.txt": "Hello Michael from CIRCUS (prod)",
	}, testutil.ReadTree(t, fsys, "/out"))
	assert.Contains(t, logs.String(), "Render finished.")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WriteTree(t, fsys, "/tmpl", map[string]string{"a.txt": "a"})

	a, _ := SetupAppTest(t, Config{TemplateDir: "/tmpl", OutputDir: "/out", DryRun: true}, fsys)
	results, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, output.Planned, results[0].Status)

	exists, err := afero.Exists(fsys, "/out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Config
		files       map[string]string
		kind        tmplerr.Kind
		errContains string
	}{
		{
			name:        "bad assignment",
			cfg:         Config{Vars: []string{"novalue"}},
			files:       map[string]string{"a.txt": "a"},
			errContains: "expected name=value",
		},
		{
			name:        "missing var file",
			cfg:         Config{VarFiles: []string{"/nope.json"}},
			files:       map[string]string{"a.txt": "a"},
			errContains: "failed to load variable file",
		},
		{
			name:  "loading error",
			files: map[string]string{"a.txt": "%{ enddirlevel }"},
			kind:  tmplerr.KindLoading,
		},
		{
			name:  "unknown function without its module",
			files: map[string]string{"a.txt": "${snakecase(\"A b\")}"},
			kind:  tmplerr.KindRendering,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			testutil.WriteTree(t, fsys, "/tmpl", tc.files)
			cfg := tc.cfg
			cfg.TemplateDir, cfg.OutputDir = "/tmpl", "/out"

			a, _ := SetupAppTest(t, cfg, fsys, WithModules(&text.Module{}))
			_, err := a.Run(context.Background())
			require.Error(t, err)
			if tc.errContains != "" {
				assert.ErrorContains(t, err, tc.errContains)
			}
			assert.Equal(t, tc.kind, tmplerr.KindOf(err))
		})
	}
}

func TestRun_NotifyFailureIsOnlyLogged(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WriteTree(t, fsys, "/tmpl", map[string]string{"a.txt": "a"})

	a, logs := SetupAppTest(t, Config{
		TemplateDir:   "/tmpl",
		OutputDir:     "/out",
		NotifyURL:     "ftp://nowhere",
		NotifyTimeout: 100 * time.Millisecond,
	}, fsys)

	results, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Contains(t, logs.String(), "Render notification failed.")
}

func TestRun_DryRunSendsNoNotification(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WriteTree(t, fsys, "/tmpl", map[string]string{"a.txt": "a"})

	a, logs := SetupAppTest(t, Config{
		TemplateDir:   "/tmpl",
		OutputDir:     "/out",
		DryRun:        true,
		NotifyURL:     "ftp://nowhere",
		NotifyTimeout: 100 * time.Millisecond,
	}, fsys)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "render notification")
	assert.NotContains(t, logs.String(), "Render notification")
}

func TestCheck_ReportsUnknownFunctions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WriteTree(t, fsys, "/tmpl", map[string]string{
		"a.txt": "${upper(title)} ${shout(title)}",
		"b.txt": "${lower(name)}",
	})

	a, _ := SetupAppTest(t, Config{TemplateDir: "/tmpl", DryRun: true}, fsys)
	reports, err := a.Check(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "a.txt: unknown function(s) [shout]")
	require.Len(t, reports, 2)
	assert.Equal(t, []string{"title"}, reports[0].Params)
}
