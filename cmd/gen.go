package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/couriersim/internal/feedgen"
)

var (
	genCfg   feedgen.Config
	genStart string
	genOut   string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic order feed",
	Args:  cobra.NoArgs,
	RunE:  runGen,
}

func init() {
	f := genCmd.Flags()
	f.IntVar(&genCfg.Days, "days", 1, "number of days")
	f.IntVar(&genCfg.OrdersPerDay, "orders", 50, "orders per day")
	f.StringVar(&genStart, "start", "2024-03-12", "first day (YYYY-MM-DD)")
	f.IntVar(&genCfg.FirstHour, "first-hour", 11, "earliest order hour")
	f.IntVar(&genCfg.LastHour, "last-hour", 14, "latest order hour")
	f.Float64Var(&genCfg.MinDistance, "min-distance", 0.5, "shortest one-way distance")
	f.Float64Var(&genCfg.MaxDistance, "max-distance", 6, "longest one-way distance")
	f.Float64Var(&genCfg.PriorityPct, "priority", 0.2, "share of priority orders")
	f.Float64Var(&genCfg.JitterPct, "jitter", 0, "day-to-day spread of the order count")
	f.Float64Var(&genCfg.MalformedPct, "malformed", 0, "share of corrupted lines")
	f.Int64Var(&genCfg.Seed, "seed", 1, "random seed")
	f.StringVarP(&genOut, "output", "o", "-", "output file, - for stdout")
	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, _ []string) error {
	start, err := time.Parse("2006-01-02", genStart)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	c := genCfg
	c.StartDate = start
	c.SetDefaults()
	g, err := feedgen.New(c)
	if err != nil {
		return err
	}
	var w io.Writer = cmd.OutOrStdout()
	if genOut != "-" {
		f, err := os.Create(genOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return g.Write(w)
}
