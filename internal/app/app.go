package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/specialistvlad/mondir/internal/config"
	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/hcl"
	"github.com/specialistvlad/mondir/internal/registry"
	"github.com/specialistvlad/mondir/internal/varfile"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	fs       afero.Fs
	loader   config.Loader
	environ  []string
}

// Option customizes an App.
type Option func(*App)

// WithFs makes the app read templates and variable files from fsys and write
// output to it.
func WithFs(fsys afero.Fs) Option {
	return func(a *App) { a.fs = fsys }
}

// WithLoader replaces the variable file loader.
func WithLoader(loader config.Loader) Option {
	return func(a *App) { a.loader = loader }
}

// WithEnviron replaces os.Environ as the source of MONDIR_VAR_ parameters.
func WithEnviron(environ []string) Option {
	return func(a *App) { a.environ = environ }
}

// WithModules replaces the core function modules.
func WithModules(modules ...registry.Module) Option {
	return func(a *App) { a.registry = registry.New().Load(modules...) }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		fs:      afero.NewOsFs(),
		environ: os.Environ(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.loader == nil {
		a.loader = varfile.NewLoader(a.fs, hcl.NewConverter())
	}
	if a.registry == nil {
		a.registry = registry.New().Load(coreModules...)
	}
	logger.Debug("Function modules registered.", "functions", len(a.registry.Names()))

	if err := a.registry.Validate(ctx); err != nil {
		// A broken function module is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
