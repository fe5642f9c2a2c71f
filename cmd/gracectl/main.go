package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/config"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/console"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/log"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/tokenstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.Quiet(os.Stderr)
	if os.Getenv("GRACECTL_DEBUG") != "" {
		logger = log.New(cfg.Environment, os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, err := tokenstore.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Tokens.Backend).Msg("failed to open token store")
	}

	env := console.Env{
		Client:   api.NewClient(cfg.Backend, logger),
		Tokens:   tokens,
		Log:      logger,
		In:       os.Stdin,
		Out:      os.Stdout,
		Password: console.TerminalPassword(os.Stdin, os.Stderr),
	}
	if err := console.Execute(ctx, env, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
