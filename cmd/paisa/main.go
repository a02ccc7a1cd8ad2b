package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"paisa/internal/amqp"
	"paisa/internal/backend"
	"paisa/internal/cli"
	apphttp "paisa/internal/http"
	"paisa/internal/log"
	"paisa/internal/services"
	"paisa/internal/view"
	"paisa/web"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLoggerFromEnv()
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.KVBackend)
		os.Exit(1)
	}

	opts := []services.Option{services.WithLogger(logger)}

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events are best effort; the app keeps working without them.
			logger.Warn("AMQP unavailable, transaction events disabled", log.FieldError, err)
		} else {
			amqpClient.SetLogger(logger)
			opts = append(opts, services.WithPublisher(amqpClient))
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(result.Store, opts...)
	if err := svc.Load(context.Background()); err != nil {
		logger.Error("Failed to load transactions", log.FieldError, err)
		os.Exit(1)
	}

	renderer, err := view.NewRenderer(web.TemplatesFS)
	if err != nil {
		logger.Error("Failed to parse templates", log.FieldError, err)
		os.Exit(1)
	}

	srvOpts := []apphttp.Option{
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
	}
	if result.Pinger != nil {
		srvOpts = append(srvOpts, apphttp.WithPinger(result.Pinger))
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, renderer, srvOpts...)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", log.FieldError, err)
		}
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.Info("Starting paisa server", "port", cfg.Port, "backend", cfg.KVBackend, log.FieldCount, len(svc.Transactions()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
