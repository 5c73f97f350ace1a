package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etdte/svc-http/internal/app"
	"github.com/etdte/svc-http/internal/config"
	"github.com/etdte/svc-http/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "svchttp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (*app.Caller, error) {
		return app.NewCaller(ctx, cfg, log)
	}

	root := newRootCommand(open)
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}
