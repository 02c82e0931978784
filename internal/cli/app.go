package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/internal/logging"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath  string
	apiURL      string
	credentials string
	credPath    string
	logLevel    string
	noInput     bool

	out    io.Writer
	prompt Prompter
	build  func(techhatch.Config, *slog.Logger) (*techhatch.Client, error)

	client *techhatch.Client
}

func defaultBuild(cfg techhatch.Config, logger *slog.Logger) (*techhatch.Client, error) {
	return techhatch.New().WithConfig(cfg).WithLogger(logger).Build()
}

func (a *app) config() (techhatch.Config, error) {
	cfg, err := techhatch.LoadConfig(a.configPath)
	if err != nil {
		return techhatch.Config{}, err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.credentials != "" {
		cfg.Credentials.Backend = techhatch.CredentialBackend(a.credentials)
	}
	if a.credPath != "" {
		cfg.Credentials.Path = a.credPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return techhatch.Config{}, err
	}
	return cfg, nil
}

func (a *app) logger(cfg techhatch.Config) *slog.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// open builds the client once and restores the persisted session.
func (a *app) open(ctx context.Context) (*techhatch.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	c, err := a.build(cfg, a.logger(cfg))
	if err != nil {
		return nil, err
	}
	if _, err := c.Restore(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) close() {
	if a.client != nil {
		_ = a.client.Close()
		a.client = nil
	}
}

func (a *app) prompter() Prompter {
	if a.noInput || a.prompt == nil {
		return noPrompter{}
	}
	return a.prompt
}

// ask returns value, or prompts for it when empty.
func (a *app) ask(value, title, placeholder string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompter().Input(title, placeholder, secret)
}

func (a *app) choose(value, title string, options []string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompter().Select(title, options)
}

type clientRunE func(cmd *cobra.Command, c *techhatch.Client, args []string) error

// withClient opens the client for the duration of one command.
func (a *app) withClient(fn clientRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := a.open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, c, args)
	}
}
