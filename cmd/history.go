package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/gamepilot/api/schemas"
	"github.com/xkilldash9x/gamepilot/internal/observability"
)

// newHistoryCmd creates the `history` command.
func newHistoryCmd() *cobra.Command {
	var (
		gameName string
		limit    int
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("run history needs database.url (or GAMEPILOT_DATABASE_URL)")
			}

			kind := schemas.GameKind(gameName)
			switch kind {
			case "", schemas.GameBearing, schemas.GameCircle:
			default:
				return fmt.Errorf("unknown game %q (want bearing or circle)", gameName)
			}

			pool, s, err := openStore(ctx, cfg.Database.URL, observability.GetLogger())
			if err != nil {
				return err
			}
			defer pool.Close()

			runs, err := s.ListRuns(ctx, kind, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tGAME\tSCENARIO\tSTATUS\tSCORE\tDURATION\tRUN")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					r.StartedAt.Local().Format(time.DateTime),
					r.Game,
					dashIfEmpty(r.Scenario),
					r.Status,
					r.Score,
					r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
					r.RunID,
				)
			}
			return w.Flush()
		},
	}

	historyCmd.Flags().StringVar(&gameName, "game", "", "only show runs of this game (bearing or circle)")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return historyCmd
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
