package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kilianp07/couriersim/api/summaries"
	"github.com/kilianp07/couriersim/core/summary"
	"github.com/kilianp07/couriersim/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored day summaries and metrics over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.New("api")

	store, err := summary.Open(ctx, cfg.Summary)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	mux := http.NewServeMux()
	mux.Handle(summaries.Path, summaries.NewHandler(store, cfg.API.Token))
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.API.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api shutdown: %v", err)
		}
	}()
	log.Infof("serving %s on %s", summaries.Path, cfg.API.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
