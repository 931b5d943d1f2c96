package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"credentialing/internal/server"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Serve the tool surface over stdio",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger, err := setup(cCtx, false)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	mcpServer := server.NewMCPServer(app.registry, logger)

	logger.Info("stdio tool server listening")
	if err := server.ServeStdio(ctx, mcpServer, logger, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}

	logger.Info("stdio tool server stopped")
	return nil
}
