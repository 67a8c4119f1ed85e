package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardedit/application/replay"
	"boardedit/infrastructure/config"
	"boardedit/infrastructure/fixtures"
)

var (
	boardFile  string
	scriptFile string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Apply an edit script to a fixture board",
	Long: `Load a board fixture, apply the steps of an edit script through the
command bus and print the resulting board.

Examples:
  netedit replay --board fixtures/demo.yaml --script edits.yaml
  netedit replay -v -b board.yaml -s edits.yaml`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&boardFile, "board", "b", "", "board fixture file")
	replayCmd.Flags().StringVarP(&scriptFile, "script", "s", "", "edit script file")
	_ = replayCmd.MarkFlagRequired("board")
	_ = replayCmd.MarkFlagRequired("script")
}

func runReplay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	script, err := replay.ParseFile(scriptFile)
	if err != nil {
		return err
	}

	c, err := container(ctx, func(cfg *config.Config) {
		cfg.FixturesDir = ""
		cfg.Events.EventBridgeEnabled = false
		if !verbose {
			cfg.Logging.Level = "warn"
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = c.Logger.Sync() }()

	board, err := fixtures.LoadFile(boardFile, c.Rules)
	if err != nil {
		return err
	}
	if err := c.Boards.Save(ctx, board); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Replaying %d steps on %s\n", len(script.Steps), board.Name())

	runner := replay.NewRunner(c.CommandBus, c.QueryBus, board.ID().String(), out)
	report, err := runner.Run(ctx, script)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	replay.WriteSummary(out, report.Board)
	return nil
}
