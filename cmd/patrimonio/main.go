package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/patrimonio/internal/cli"
	"github.com/dmitrijs2005/patrimonio/internal/config"
	"github.com/dmitrijs2005/patrimonio/internal/logging"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	app, cleanup, err := cli.NewAppFromConfig(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	app.Run(ctx)

}
