package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fintone/internal/amqp"
	"fintone/internal/backend"
	"fintone/internal/ledger/sheets"
	"fintone/internal/log"
	"fintone/internal/worker"
)

func newWorkerCommand() *cobra.Command {
	var backfillInterval time.Duration

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the mirror worker copying saved records to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is required for the mirror worker")
			}
			if cfg.LedgerBackend == "sheets" {
				return fmt.Errorf("mirror worker requires a non-sheets primary backend")
			}

			primary, err := backend.NewFactory(logger).Create(ctx, cfg)
			if err != nil {
				return err
			}
			if primary.Cleanup != nil {
				defer func() {
					if cerr := primary.Cleanup(); cerr != nil {
						logger.Warn("cleanup failed", log.FieldError, cerr.Error())
					}
				}()
			}

			mirror, err := sheets.NewFromEnv(ctx, logger)
			if err != nil {
				return fmt.Errorf("initialize sheets mirror: %w", err)
			}

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
			if err != nil {
				return fmt.Errorf("connect amqp: %w", err)
			}
			defer client.Close()

			logger.Info("mirror worker starting",
				log.FieldOperation, log.OpStartup,
				log.FieldBackend, cfg.LedgerBackend,
				log.FieldQueue, cfg.AMQPQueue)

			return worker.NewMirror(primary.Store, mirror, client, backfillInterval, logger).Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&backfillInterval, "backfill-interval", 0, "periodic full backfill interval (0 disables)")
	return cmd
}
