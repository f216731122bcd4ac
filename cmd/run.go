package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/couriersim/app"
	coremon "github.com/kilianp07/couriersim/core/monitoring"
	"github.com/kilianp07/couriersim/infra/logger"
	"github.com/kilianp07/couriersim/infra/metrics"
)

var holdMetrics bool

var runCmd = &cobra.Command{
	Use:   "run <feed>",
	Short: "Simulate the order feed read from a file, or stdin when feed is -",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeed,
}

func init() {
	runCmd.Flags().BoolVar(&holdMetrics, "hold", false, "keep serving /metrics after the feed is processed until interrupted")
	rootCmd.AddCommand(runCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	defer coremon.Recover()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.New("main")

	in, closeIn, err := openFeed(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeIn()

	serveMetrics := cfg.Metrics.ListenAddr != "" && cfg.Metrics.HasSink("prometheus")
	if serveMetrics {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.ListenAddr, nil); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			log.Errorf("service close: %v", cerr)
		}
	}()
	res, err := svc.Run(ctx, in)
	if err != nil {
		coremon.CaptureException(err, map[string]string{"module": "run", "run_id": svc.RunID()})
		return err
	}
	if err := printResult(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if holdMetrics && serveMetrics {
		log.Infof("serving metrics on %s until interrupted", cfg.Metrics.ListenAddr)
		<-ctx.Done()
	}
	return nil
}

func openFeed(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open feed: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func printResult(w io.Writer, res app.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s\n", res.RunID)
	fmt.Fprintln(tw, "DATE\tDELIVERIES\tREVENUE\tMISSED")
	for _, d := range res.Days {
		fmt.Fprintf(tw, "%s\t%d\t%g\t%d\n", d.Date, d.Stats.Deliveries, d.Stats.Revenue, d.Stats.Missed)
	}
	if res.Dropped > 0 {
		fmt.Fprintf(tw, "%d malformed lines dropped\n", res.Dropped)
	}
	for _, f := range res.Files {
		fmt.Fprintf(tw, "wrote %s\n", f)
	}
	return tw.Flush()
}
