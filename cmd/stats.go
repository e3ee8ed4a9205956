package cmd

import (
	"fmt"
	"time"

	"ixp-tracker/core/utils"
	"ixp-tracker/feature/lookup"
	"ixp-tracker/feature/stats"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statsMonth string

// statsCmd computes the monthly statistics.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Generate monthly statistics",
	Long: `Computes membership statistics for every exchange and every country as of
the first day of the given month, replacing rows computed earlier.`,
	RunE: runStats,
}

func init() {
	RootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsMonth, "month", "", "Month to compute (YYYY-MM, default current month)")
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}

	month := utils.StartOfMonth(time.Now().UTC())
	if statsMonth != "" {
		if month, err = utils.ParseMonth(statsMonth); err != nil {
			return fmt.Errorf("invalid --month value: %w", err)
		}
	}

	lookups, err := lookup.Load(rt.cfg.Lookup)
	if err != nil {
		return fmt.Errorf("failed to load lookups: %w", err)
	}

	summary, err := stats.NewGenerator(rt.store, lookups, rt.logger).Generate(cmd.Context(), month)
	if err != nil {
		return err
	}

	rt.logger.Info("Statistics generated",
		zap.String("month", summary.Month.Format("2006-01")),
		zap.Int("exchanges", summary.Exchanges),
		zap.Int("countries", summary.Countries),
	)
	rt.finish("stats")
	return nil
}
