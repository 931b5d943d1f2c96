package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credentialing/internal/server"

	"github.com/urfave/cli/v2"
)

var httpCommand = &cli.Command{
	Name:   "http",
	Usage:  "Serve the tool surface over HTTP",
	Action: serveHTTP,
}

func serveHTTP(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger, err := setup(cCtx, true)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := server.New(config, logger, app.registry, app.metrics)

	go func() {
		logger.WithField("port", config.HTTPPort).Infof("server starting http://localhost:%d", config.HTTPPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
