package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the configured courier pool in queue order",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, _ []string) error {
	pool, err := cfg.Fleet.Build()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVEHICLE\tSPEED\tDAILY CAP")
	for i, c := range pool {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%s\n", i, c.Name, c.Vehicle, c.Speed, c.Cap)
	}
	return tw.Flush()
}
