package main

import (
	"context"

	"credentialing/internal/db"
	"credentialing/internal/store"
	"credentialing/internal/tools"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// application is everything a command needs to talk to the engine.
type application struct {
	config   *types.Config
	logger   *logrus.Logger
	db       *db.DB
	repos    *store.Repositories
	registry *tools.Registry
	metrics  *tools.Metrics
}

// setup loads config and a logger for a command. jsonLogs selects the JSON
// formatter used by the HTTP server.
func setup(c *cli.Context, jsonLogs bool) (*types.Config, *logrus.Logger, error) {
	config, err := loadConfig(c.String("env-prefix"))
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(config, jsonLogs)
	if err != nil {
		return nil, nil, err
	}

	return config, logger, nil
}

func newApplication(ctx context.Context, c *types.Config, logger *logrus.Logger) (*application, error) {
	database, err := db.Open(ctx, c.DBPath)
	if err != nil {
		return nil, err
	}

	allowed, err := allowedTools(c)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	packets, err := packetStoreFromConfig(ctx, c)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	repos := store.New(database)
	metrics := tools.NewMetrics()

	registry := tools.New(repos,
		tools.WithPrincipal(tools.FixedPrincipal(principalFromConfig(c))),
		tools.WithAllowedTools(allowed),
		tools.WithWorkspace(c.WorkspacePath),
		tools.WithPacketStore(packets),
		tools.WithLogger(logger),
		tools.WithMetrics(metrics),
	)

	logger.WithFields(logrus.Fields{
		"db_path":   database.Path(),
		"driver":    database.Driver(),
		"workspace": c.WorkspacePath,
		"tools":     len(registry.Tools()),
	}).Info("credentialing engine ready")

	return &application{
		config:   c,
		logger:   logger,
		db:       database,
		repos:    repos,
		registry: registry,
		metrics:  metrics,
	}, nil
}

func (a *application) Close() error {
	return utils.ErrorWrapOrNil(a.db.Close(), "failed to close database")
}
