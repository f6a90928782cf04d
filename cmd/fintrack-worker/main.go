package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/export/sheets"
	applog "fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.NewLogger(cfg, applog.ComponentWorker, os.Stdout)

	if cfg.AMQPURL == "" || cfg.GoogleSpreadsheetID == "" {
		logger.Error("The export worker needs AMQP_URL and GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		logger.Warn("Export worker reads a private in-memory ledger; only sqlite is shared with the server", "backend", cfg.DataBackend)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// the worker only reads the ledger and must not publish events itself
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res := cli.InitBackend(ctx, logger, &storeCfg)
	defer res.Cleanup()

	sheetsClient, err := sheets.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(res.Store, sheetsClient)

	logger.Info("Performing startup reconcile", applog.FieldOperation, applog.OpStartup)
	if err := exportWorker.Reconcile(ctx); err != nil {
		// keep consuming; the next reconcile retries
		logger.Error("Startup reconcile failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.Consume(gctx, exportWorker.HandleEvent)
	})
	if interval := cfg.ExportReconcileInterval; interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if err := exportWorker.Reconcile(gctx); err != nil {
						logger.Error("Periodic reconcile failed", applog.FieldError, err)
					}
				}
			}
		})
	}

	logger.Info("Export worker running",
		"queue", cfg.AMQPQueue,
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"reconcile_interval", cfg.ExportReconcileInterval)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Export worker shutdown complete")
}
