package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"paisa/internal/amqp"
	"paisa/internal/backend"
	"paisa/internal/cli"
	"paisa/internal/config"
	"paisa/internal/log"
	"paisa/internal/services"
	"paisa/internal/sheets"
	gsheet "paisa/internal/sheets/google"
	mem "paisa/internal/sheets/memory"
	"paisa/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLoggerFromEnv()
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentWorker)

	logger.Info("Starting paisa-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	mirror, err := newMirror(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	// The store is read only to reconcile rows missed while the worker was down.
	var source worker.Source
	cleanup := func() error { return nil }
	if backendCfg, err := backend.FromAppConfig(cfg); err != nil {
		logger.Warn("Backend unavailable, skipping reconciliation", log.FieldError, err)
	} else if result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg); err != nil {
		logger.Warn("Backend unavailable, skipping reconciliation", log.FieldError, err)
	} else {
		source = services.NewTransactionService(result.Store, services.WithLogger(logger))
		cleanup = result.Cleanup
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	amqpClient.SetLogger(logger)

	mw := worker.NewMirrorWorker(mirror, source, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
		if err := cleanup(); err != nil {
			logger.Warn("Backend cleanup error", log.FieldError, err)
		}
	})

	// Reconcile finishes before any event is consumed; queued events are
	// applied afterwards, in publish order.
	if err := mw.Reconcile(ctx); err != nil {
		// Not fatal: the events that follow are still applied.
		logger.Error("Startup reconciliation incomplete", log.FieldError, err, log.FieldOperation, log.OpSync)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeWithRetry(gctx, mw.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}

func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Mirror, error) {
	if !cfg.MirrorEnabled() {
		logger.Info("Google Sheets disabled, mirroring into memory")
		return mem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
