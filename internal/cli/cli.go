package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/navgraph/pkg/buildinfo"
	"github.com/matzehuels/navgraph/pkg/config"
	"github.com/matzehuels/navgraph/pkg/journal"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "navgraph"

	// closeTimeout bounds how long a command waits for queued transitions
	// when it shuts a navigator down.
	closeTimeout = 5 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is set by the --config flag.
	ConfigPath string

	// verbose records an explicit --verbose, which wins over the config file.
	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level == LogDebug
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "navgraph tracks and replays screen navigation graphs",
		Long: `navgraph keeps the navigation graph of an application's screens
(stack pushes, modal presentations, embedded children) and executes the
matching screen transitions one at a time, in order.

Navigation scripts describe push, pop and rewind requests in TOML. Run them
against a recording host, render the resulting graph, serve it over HTTP, or
watch them in an interactive terminal host.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/navgraph/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies its log level unless
// --verbose was given.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if !c.verbose {
		c.Logger.SetLevel(cfg.LogLevel())
	}
	return cfg, nil
}

// openJournal opens the journal backend named by cfg.
func (c *CLI) openJournal(ctx context.Context, cfg *config.Config) (journal.Journal, error) {
	j, err := journal.Open(ctx, cfg.Journal)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("journal opened", "backend", journal.Describe(cfg.Journal))
	return j, nil
}
