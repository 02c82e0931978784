package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Option customizes the root command. Tests use it to replace terminal I/O.
type Option func(*app)

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *app) { a.out = w }
}

// WithPrompter replaces the interactive huh prompts.
func WithPrompter(p Prompter) Option {
	return func(a *app) { a.prompt = p }
}

// NewRootCommand assembles the techhatch command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		out:    os.Stdout,
		prompt: huhPrompter{accessible: os.Getenv("ACCESSIBLE") != ""},
		build:  defaultBuild,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "techhatch",
		Short: "Job board client",
		Long: `techhatch talks to the job board API: sign in with a one-time code sent by
email, search and apply to jobs, and track applications.

The credential is kept in a file under the user config directory unless
--credentials selects another backend. Settings come from --config (YAML),
.env and TECHHATCH_* environment variables, then flags.`,
		SilenceUsage: true,
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.apiURL, "api-url", "", "API base URL (overrides config)")
	flags.StringVar(&a.credentials, "credentials", "file", "credential backend: file, memory or redis")
	flags.StringVar(&a.credPath, "credentials-path", "", "credential file for the file backend")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&a.noInput, "no-input", false, "never prompt; fail on missing values")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newVerifyCmd(a),
		newResendCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newJobsCmd(a),
		newApplyCmd(a),
		newApplicationsCmd(a),
		newMockServerCmd(a),
		newLoadtestCmd(a),
	)
	return root
}

// ExecuteContext runs the CLI with os.Args.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
