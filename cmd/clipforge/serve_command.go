package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipforge/internal/daemon"
	"clipforge/internal/metrics"
	"clipforge/internal/pipeline"
	"clipforge/internal/queue"
	"clipforge/internal/workflow"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}

			collector := metrics.New()
			analyzer := pipeline.NewAnalyzer(cfg, store, logger)
			manager := workflow.NewManager(cfg, store, analyzer, logger, collector)

			d, err := daemon.New(cfg, store, manager, collector, logger)
			if err != nil {
				store.Close()
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				d.Close()
				return err
			}
			if addr := d.Addr(); addr != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "clipforge daemon listening on %s\n", addr)
			}

			<-runCtx.Done()
			return d.Close()
		},
	}
}
