package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/core/summary"
	"github.com/kilianp07/couriersim/pkg/export"
)

var (
	summaryDate   string
	summaryRun    string
	summaryFormat string
)

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "Query day summaries recorded by previous runs",
	Args:  cobra.NoArgs,
	RunE:  runSummaries,
}

func init() {
	summariesCmd.Flags().StringVar(&summaryDate, "date", "", "only show this day marker")
	summariesCmd.Flags().StringVar(&summaryRun, "run", "", "only show this run id")
	summariesCmd.Flags().StringVarP(&summaryFormat, "format", "f", "table", "output format: table, json or csv")
	rootCmd.AddCommand(summariesCmd)
}

func runSummaries(cmd *cobra.Command, _ []string) error {
	if cfg.Summary.Backend == summary.BackendNone || cfg.Summary.Backend == summary.BackendMemory {
		return fmt.Errorf("summary backend %q keeps no history between runs", cfg.Summary.Backend)
	}
	store, err := summary.Open(cmd.Context(), cfg.Summary)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	recs, err := store.Query(cmd.Context(), summary.Query{Date: summaryDate, RunID: summaryRun})
	if err != nil {
		return err
	}
	return writeRecords(cmd.OutOrStdout(), summaryFormat, recs)
}

func writeRecords(w io.Writer, format string, recs []summary.Record) error {
	switch format {
	case "json":
		if recs == nil {
			recs = []summary.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "csv":
		days := make([]model.DaySummary, 0, len(recs))
		for _, r := range recs {
			days = append(days, r.Summary())
		}
		return export.WriteCSV(w, days)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tDATE\tDELIVERIES\tREVENUE\tMISSED\tDROPPED")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%d\t%d\n", r.RunID, r.Date, r.Stats.Deliveries, r.Stats.Revenue, r.Stats.Missed, r.Dropped)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
