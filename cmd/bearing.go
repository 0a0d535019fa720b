package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/internal/game"
	"github.com/xkilldash9x/gamepilot/internal/observability"
)

// newBearingCmd creates the `bearing` command.
func newBearingCmd() *cobra.Command {
	bearingCmd := &cobra.Command{
		Use:   "bearing",
		Short: "Play the direction game until the score threshold is reached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			svc, err := newServices(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer svc.Close()

			page, closeTab, err := svc.tabs.OpenTab(ctx)
			if err != nil {
				return fmt.Errorf("failed to open tab: %w", err)
			}
			defer closeTab()

			report, runErr := game.NewBearingGame(page, cfg.Bearing, logger).Run(ctx)
			recordErr := svc.recordBearing(context.WithoutCancel(ctx), report)

			if runErr != nil {
				logger.Error("Bearing game failed",
					zap.String("run_id", report.RunID),
					zap.Int("rounds", len(report.Rounds)),
					zap.Error(runErr),
				)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Bearing game complete: score %d after %d rounds (run %s)\n",
					report.FinalScore, len(report.Rounds), report.RunID)
			}
			return svc.settle(runErr, recordErr)
		},
	}

	flags := bearingCmd.Flags()
	flags.String("url", "", "game page URL")
	flags.Int("threshold", 500, "score at which the game stops")
	flags.Float64("step-length", 30, "pixels per instruction step")
	flags.Int("max-rounds", 0, "give up after this many rounds (0 = unlimited)")
	bindFlag(flags, "url", "bearing.url")
	bindFlag(flags, "threshold", "bearing.score_threshold")
	bindFlag(flags, "step-length", "bearing.step_length")
	bindFlag(flags, "max-rounds", "bearing.max_rounds")

	return bearingCmd
}
