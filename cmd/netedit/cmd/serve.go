package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boardedit/infrastructure/config"
	"boardedit/interfaces/http/rest"
)

var (
	addr        string
	fixturesDir string
	watchDir    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the board editing API. Boards are seeded from the fixtures
directory; the configuration directory is watched for log level changes.

Examples:
  netedit serve
  netedit serve --addr :9090 --fixtures fixtures --watch config`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDRESS)")
	serveCmd.Flags().StringVar(&fixturesDir, "fixtures", "", "directory of board fixtures to load")
	serveCmd.Flags().StringVar(&watchDir, "watch", "", "configuration directory to watch for changes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container(ctx, func(cfg *config.Config) {
		if addr != "" {
			cfg.Server.Address = addr
		}
		if fixturesDir != "" {
			cfg.FixturesDir = fixturesDir
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = c.Logger.Sync() }()

	if watchDir != "" {
		w, err := config.NewWatcher(watchDir, c.Config, c.Logger.Named("config"))
		if err != nil {
			return err
		}
		w.OnChange(config.LevelUpdater(c.Level, c.Logger))
		w.OnChange(config.RulesUpdater(c.Sessions, c.Logger))
		defer w.Stop()
	}

	if err := rest.Serve(ctx, c); err != nil {
		return err
	}
	c.Logger.Info("Server stopped", zap.String("address", c.Config.Server.Address))
	return nil
}
