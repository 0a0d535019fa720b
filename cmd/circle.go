package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/internal/config"
	"github.com/xkilldash9x/gamepilot/internal/game"
	"github.com/xkilldash9x/gamepilot/internal/observability"
)

// newCircleCmd creates the `circle` command.
func newCircleCmd() *cobra.Command {
	var (
		names []string
		all   bool
	)

	circleCmd := &cobra.Command{
		Use:   "circle",
		Short: "Draw circles in the perfect-circle game, one tab per scenario",
		Long: `Draw circles in the perfect-circle game.

Each scenario runs in its own fresh tab, one after another. A failing
scenario does not stop the remaining ones; the command fails if any did.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			scenarios, err := resolveScenarios(cfg.Circle, names, all)
			if err != nil {
				return err
			}

			svc, err := newServices(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer svc.Close()

			var failed []error
			for _, scenario := range scenarios {
				if err := runCircleScenario(ctx, cmd, svc, cfg.Circle, scenario); err != nil {
					if ctx.Err() != nil {
						return err
					}
					failed = append(failed, fmt.Errorf("scenario %s: %w", scenario.Name, err))
				}
			}
			return errors.Join(failed...)
		},
	}

	flags := circleCmd.Flags()
	flags.StringSliceVarP(&names, "scenario", "s", nil, "scenario to run (repeatable)")
	flags.BoolVar(&all, "all", false, "run every configured scenario")
	flags.String("url", "", "game page URL")
	flags.Float64("pointer-rate", 0, "pointer events per second while drawing (0 = unpaced)")
	bindFlag(flags, "url", "circle.url")
	bindFlag(flags, "pointer-rate", "circle.pointer_rate")
	circleCmd.MarkFlagsMutuallyExclusive("scenario", "all")
	circleCmd.MarkFlagsOneRequired("scenario", "all")

	return circleCmd
}

// resolveScenarios turns the requested names into scenarios, keeping the
// order given on the command line. --all runs every scenario sorted by name.
func resolveScenarios(cfg config.CircleConfig, names []string, all bool) ([]game.Scenario, error) {
	if all {
		names = cfg.ScenarioNames()
	}
	if len(names) == 0 {
		return nil, errors.New("no scenarios to run")
	}

	scenarios := make([]game.Scenario, 0, len(names))
	for _, name := range names {
		sc, ok := cfg.Scenario(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(cfg.ScenarioNames(), ", "))
		}
		scenarios = append(scenarios, game.ScenarioFromConfig(strings.ToLower(name), sc))
	}
	return scenarios, nil
}

func runCircleScenario(ctx context.Context, cmd *cobra.Command, svc *services, cfg config.CircleConfig, scenario game.Scenario) error {
	page, closeTab, err := svc.tabs.OpenTab(ctx)
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	defer closeTab()

	report, runErr := game.NewCircleGame(page, cfg, svc.logger).Run(ctx, scenario)
	recordErr := svc.recordCircle(context.WithoutCancel(ctx), report)

	if runErr != nil {
		svc.logger.Error("Circle scenario failed",
			zap.String("scenario", scenario.Name),
			zap.String("run_id", report.RunID),
			zap.Error(runErr),
		)
	} else {
		line := fmt.Sprintf("Circle %s: drew %d points, radius %.1f (run %s)", scenario.Name, report.PointCount, report.Radius, report.RunID)
		if report.ResultText != "" {
			line += ", result " + report.ResultText
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return svc.settle(runErr, recordErr)
}
