package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"credentialing/internal/tools"
	"credentialing/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Service exposes the tool registry over HTTP.
type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	registry *tools.Registry
	metrics  *tools.Metrics

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	registry *tools.Registry,
	metrics *tools.Metrics,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		registry: registry,
		metrics:  metrics,
	}

	s.buildRouter(mux)

	// Trailing slashes are stripped ahead of routing, since flow never
	// matches them to a route and its middleware would not run.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.HTTPPort),
		Handler:           s.StripTrailingSlash(mux),
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/tools", s.handleListTools, http.MethodGet)
	r.HandleFunc("/tools/:name", s.handleCallTool, http.MethodPost)

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}), http.MethodGet)
	}
}
