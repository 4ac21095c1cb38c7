package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specialistvlad/mondir/internal/app"
	"github.com/specialistvlad/mondir/internal/refs"
)

func newCheckCommand(v *viper.Viper, stdout, stderr io.Writer, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check TEMPLATE_DIR",
		Short: "Validate a template directory and list the parameters it reads",
		Args:  exactArgs(1, "TEMPLATE_DIR"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.NewConfig(app.Config{
				TemplateDir: args[0],
				DryRun:      true,
				Exclude:     v.GetStringSlice("exclude"),
				LogFormat:   strings.ToLower(v.GetString("log-format")),
				LogLevel:    strings.ToLower(v.GetString("log-level")),
			})
			if err != nil {
				return usageError(err)
			}

			reports, err := app.NewApp(stderr, cfg, opts...).Check(cmd.Context())
			printCheck(stdout, reports)
			if err != nil {
				return failure(err)
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("exclude", nil, "doublestar pattern of template paths to skip (repeatable)")
	return cmd
}

func printCheck(w io.Writer, reports []refs.Report) {
	for _, r := range reports {
		plannedColor.Fprintf(w, "%s", r.File)
		fmt.Fprintf(w, "\n  params:    %s\n", strings.Join(r.Params, ", "))
		if len(r.Functions) > 0 {
			fmt.Fprintf(w, "  functions: %s\n", strings.Join(r.Functions, ", "))
		}
		if r.Spread {
			fmt.Fprintln(w, "  (spread loops may provide some params)")
		}
	}
	fmt.Fprintf(w, "%d file(s), params: %s\n", len(reports), strings.Join(refs.Params(reports), ", "))
}
