package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const configFlag = "config"

// ConfigPath extracts --config from args ahead of command parsing, since the
// settings decide how the commands are wired.
func ConfigPath(args []string) string {
	fs := pflag.NewFlagSet("settings", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	path := fs.StringP(configFlag, "c", "", "")
	_ = fs.Parse(args)
	return *path
}

// CLI represents the command-line interface
type CLI struct {
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Profiles config.Registry
	Pages    commands.PageFactory
	Exporter commands.ExporterFactory
	PageSize int
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	root := &cobra.Command{
		Use:           "traffic-atlas",
		Short:         "Comparative analytics dashboards in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Output)
	root.PersistentFlags().StringP(configFlag, "c", "", "Path to the settings file (YAML or TOML)")

	root.AddCommand(commands.NewReportCmd(commands.ReportDeps{
		Profiles: opts.Profiles,
		Pages:    opts.Pages,
		Exporter: opts.Exporter,
		PageSize: opts.PageSize,
		Reporters: map[string]commands.Reporter{
			"text": export.NewReporter(opts.Output),
			"json": NewJSONReporter(opts.Output),
		},
	}))
	root.AddCommand(commands.NewProfilesCmd(opts.Profiles))
	root.AddCommand(commands.NewHashPasswordCmd())

	return &CLI{rootCmd: root}
}

func (cli *CLI) Execute(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}
