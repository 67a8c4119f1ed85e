package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"boardedit/infrastructure/config"
	"boardedit/infrastructure/di"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "netedit",
	Short: "Transactional net editing for circuit boards",
	Long: `Edit the copper nets of a board: place junctions, merge segments and
points, detach points from vias and pads, with full undo and redo.

Examples:
  netedit replay --board fixtures/demo.yaml --script edits.yaml
  netedit serve --addr :9090`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// container loads the configuration, lets adjust change it, and wires the
// application
func container(ctx context.Context, adjust func(*config.Config)) (*di.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if adjust != nil {
		adjust(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	return c, nil
}
