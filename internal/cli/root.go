package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/specialistvlad/mondir/internal/app"
	"github.com/specialistvlad/mondir/internal/notify"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=…".
var Version = "dev"

const envPrefix = "MONDIR"

// Execute runs the mondir command line with args. Output meant for the user
// goes to stdout; logs go to stderr. Returned errors are *ExitError.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...app.Option) error {
	root := NewRootCommand(stdout, stderr, opts...)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Errors cobra produces itself are all about usage.
	return usageError(err)
}

// NewRootCommand builds the command tree. Each call gets its own viper
// instance, so commands can be built and run repeatedly in tests.
func NewRootCommand(stdout, stderr io.Writer, opts ...app.Option) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "mondir",
		Short: "Render whole directory trees from templates",
		Long: `mondir renders a template directory into an output directory.

Every file is an HCL template whose path is a template too. Directory tags
such as %{ thisfile for name in names } turn one template file into many
output files.

Flags can also be set with MONDIR_* environment variables (MONDIR_WORKERS,
MONDIR_LOG_LEVEL, ...) or in a .mondir.yaml file in the working directory.
Template parameters come from MONDIR_VAR_* environment variables, --var-file
and --var, later sources winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cmd, cfgFile)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is .mondir.yaml in the working directory)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	root.AddCommand(
		newRenderCommand(v, stdout, stderr, opts),
		newPlanCommand(v, stdout, stderr, opts),
		newCheckCommand(v, stdout, stderr, opts),
		newVersionCommand(stdout),
	)
	return root
}

// initConfig wires flags, environment and config file into v.
func initConfig(v *viper.Viper, cmd *cobra.Command, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".mondir")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return usageError(err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return usageErrorf("reading config file: %v", err)
	}
	return nil
}

func addRenderFlags(fs *pflag.FlagSet) {
	fs.StringArray("var", nil, "template parameter as name=value; the value is an HCL expression or a plain string (repeatable)")
	fs.StringArray("var-file", nil, "file with template parameters: .hcl, .tfvars, .json, .yaml, .yml or .toml (repeatable)")
	fs.StringSlice("exclude", nil, "doublestar pattern of template paths to skip (repeatable)")
	fs.Int("workers", 4, "number of template files processed concurrently")
	fs.Bool("fail-fast", false, "stop at the first failing template file")
}

// appConfig collects the configuration shared by render and plan.
func appConfig(v *viper.Viper, cmd *cobra.Command) (app.Config, error) {
	vars, err := cmd.Flags().GetStringArray("var")
	if err != nil {
		return app.Config{}, err
	}
	varFiles, err := cmd.Flags().GetStringArray("var-file")
	if err != nil {
		return app.Config{}, err
	}
	return app.Config{
		VarFiles:  varFiles,
		Vars:      vars,
		Exclude:   v.GetStringSlice("exclude"),
		Workers:   v.GetInt("workers"),
		FailFast:  v.GetBool("fail-fast"),
		LogFormat: strings.ToLower(v.GetString("log-format")),
		LogLevel:  strings.ToLower(v.GetString("log-level")),
	}, nil
}

func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("expected %s, got %d argument(s)", names, len(args))
		}
		return nil
	}
}

func newRenderCommand(v *viper.Viper, stdout, stderr io.Writer, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render TEMPLATE_DIR OUTPUT_DIR",
		Short: "Render a template directory into an output directory",
		Example: `  mondir render ./template ./out --var 'names=["Graham","Michael"]'
  mondir render ./template ./out --var-file params.yaml --overwrite`,
		Args: exactArgs(2, "TEMPLATE_DIR and OUTPUT_DIR"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appConfig(v, cmd)
			if err != nil {
				return usageError(err)
			}
			cfg.TemplateDir, cfg.OutputDir = args[0], args[1]
			cfg.Overwrite = v.GetBool("overwrite")
			cfg.NotifyURL = v.GetString("notify-url")
			cfg.NotifyTimeout = v.GetDuration("notify-timeout")
			cfg.NotifyWaitAck = v.GetBool("notify-ack")
			return run(cmd.Context(), cfg, stdout, stderr, opts)
		},
	}
	fs := cmd.Flags()
	addRenderFlags(fs)
	fs.Bool("overwrite", false, "replace output files that already exist")
	fs.String("notify-url", "", "socket.io server to notify after a successful render")
	fs.Duration("notify-timeout", notify.DefaultTimeout, "how long to wait for the notification")
	fs.Bool("notify-ack", false, "wait for the server to acknowledge the notification")
	return cmd
}

func newPlanCommand(v *viper.Viper, stdout, stderr io.Writer, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan TEMPLATE_DIR [OUTPUT_DIR]",
		Short: "List the files a render would write, without writing anything",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return usageErrorf("expected TEMPLATE_DIR and an optional OUTPUT_DIR, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appConfig(v, cmd)
			if err != nil {
				return usageError(err)
			}
			cfg.TemplateDir = args[0]
			if len(args) == 2 {
				cfg.OutputDir = args[1]
			}
			cfg.DryRun = true
			return run(cmd.Context(), cfg, stdout, stderr, opts)
		},
	}
	addRenderFlags(cmd.Flags())
	return cmd
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(stdout, "mondir %s\n", Version)
			return err
		},
	}
}

func run(ctx context.Context, cfg app.Config, stdout, stderr io.Writer, opts []app.Option) error {
	validated, err := app.NewConfig(cfg)
	if err != nil {
		return usageError(err)
	}

	start := time.Now()
	results, err := app.NewApp(stderr, validated, opts...).Run(ctx)
	printSummary(stdout, results, err, time.Since(start))
	if err != nil {
		return failure(err)
	}
	return nil
}
