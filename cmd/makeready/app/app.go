// Package app wires the makeready CLI: configuration loading, logger setup,
// root command construction, and process lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/spanline/makeready/cmd/makeready/cmd"
	"github.com/spanline/makeready/pkg/logging"
)

// App is one CLI process: its configuration and logger.
type App struct {
	version string
	config  *Config
	logger  *zerolog.Logger
}

// New loads configuration and builds the application.
func New(version string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := NewLogger(config)
	logging.SetDefault(logger)
	return &App{version: version, config: config, logger: &logger}, nil
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "makeready",
		Short:   "Utility-pole make-ready data reconciliation",
		Version: a.version,
		Long: `Makeready reconciles utility-pole survey data from independently
maintained spreadsheets - a node/connection network export, a per-pole
attachment survey, and an optional QC correction sheet - into one ordered
set of pole-to-pole rows for telecommunications make-ready engineering.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().String("config", "", "engine config file (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.LogFormat, "log-format", a.config.LogFormat, "log format: auto, console, json")

	rootCmd.SetVersionTemplate("makeready {{.Version}}\n")

	cmd.Register(rootCmd)
	return rootCmd
}

// setupCommand runs before any command: it applies parsed flags and
// reinitializes the logger.
func (a *App) setupCommand(c *cobra.Command, _ []string) error {
	verbose := mustGetBool(c, "verbose")
	quiet := mustGetBool(c, "quiet")
	noColor := mustGetBool(c, "no-color")
	logLevel := mustGetString(c, "log-level")
	if cf := mustGetString(c, "config"); cf != "" {
		a.config.ConfigFile = cf
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	return nil
}

func mustGetBool(c *cobra.Command, name string) bool {
	v, err := c.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag %q not defined: %v", name, err))
	}
	return v
}

func mustGetString(c *cobra.Command, name string) string {
	v, err := c.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag %q not defined: %v", name, err))
	}
	return v
}

// ContextWithSignals creates a context cancelled on interrupt or
// termination signals.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ExitOnError prints an error and exits with a non-zero status.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
