// Package observability provides structured logging, Prometheus metrics,
// health probes, OpenTelemetry setup and graceful shutdown.
//
// # Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("nip", nip).Info("user created")
//
// Request-scoped loggers come from the context:
//
//	observability.FromContext(r.Context()).WithError(err).Error("update failed")
//
// # Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RecordLogin(observability.LoginOutcomeSuccess)
//
// # Health
//
//	checker := observability.NewHealthChecker(db, redisClient, version)
//	observability.RegisterHealthRoutes(mux, checker)
package observability
