package registry

import (
	"log/slog"

	"marketfactory/internal/registry/handler"
	"marketfactory/internal/registry/metrics"
	"marketfactory/internal/registry/service"
)

// Service exposes the read-only registry queries.
type Service = service.Service

// Handler wires HTTP endpoints to the registry service.
type Handler = handler.Handler

// NewService constructs the query service over store with logging and metrics.
func NewService(store service.Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return service.New(store, service.WithLogger(logger), service.WithMetrics(m))
}

// NewHandler constructs the HTTP handler for the public registry routes.
func NewHandler(s *Service, logger *slog.Logger, defaultLimit uint64) *Handler {
	return handler.New(s, logger, defaultLimit)
}
