package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"voting/internal/app"
	"voting/internal/cli"
	"voting/internal/config"
	"voting/internal/observability/logging"
)

func main() {
	open := func(context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		slog.SetDefault(logging.NewLogger(logging.Config{
			ServiceName: "votectl",
			Environment: cfg.Environment,
			Level:       "warn",
			Output:      os.Stderr,
		}))
		return app.New(cfg)
	}

	if err := cli.NewRootCmd(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
