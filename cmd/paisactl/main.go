// Command paisactl manages the transaction list from a terminal, using the
// same key/value backend as the web app.
package main

import (
	"context"
	"fmt"
	"os"

	"paisa/internal/backend"
	"paisa/internal/cli"
	"paisa/internal/log"
	"paisa/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLoggerFromEnv()
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentCLI)

	_, explicit := os.LookupEnv("KV_BACKEND")
	if err := selectBackend(cfg, explicit); err != nil {
		fmt.Fprintln(os.Stderr, "paisactl:", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "paisactl:", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "paisactl:", err)
		os.Exit(1)
	}
	defer result.Cleanup()

	ctx := context.Background()
	svc := services.NewTransactionService(result.Store, services.WithLogger(logger))
	if err := svc.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "paisactl:", err)
		os.Exit(1)
	}

	if err := run(ctx, svc, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "paisactl:", err)
		os.Exit(1)
	}
}
