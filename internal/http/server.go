// Package http serves the Prometheus metrics and health endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"connectdj/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

// Metrics instruments the resolution pipeline. It implements core.Metrics
// for the catalog and media layers.
type Metrics struct {
	RemoteCallsTotal  *prometheus.CounterVec
	RemoteDuration    *prometheus.HistogramVec
	MediaLookupsTotal *prometheus.CounterVec
	SessionsTotal     *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

func (m *Metrics) ObserveRemoteCall(operation, status string, elapsed time.Duration) {
	m.RemoteCallsTotal.WithLabelValues(operation, status).Inc()
	m.RemoteDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveMediaLookup(status string) {
	m.MediaLookupsTotal.WithLabelValues(status).Inc()
}

// RecordSession counts a playback session start and its eventual outcome.
func (m *Metrics) RecordSession(kind, status string) {
	m.SessionsTotal.WithLabelValues(kind, status).Inc()
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := &Metrics{
		RemoteCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "connectdj_remote_calls_total",
				Help: "Total number of catalog API calls",
			},
			[]string{"operation", "status"},
		),
		RemoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "connectdj_remote_duration_seconds",
				Help:    "Time spent on catalog API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		MediaLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "connectdj_media_lookups_total",
				Help: "Total number of external media lookups",
			},
			[]string{"status"},
		),
		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "connectdj_sessions_total",
				Help: "Total number of playback sessions",
			},
			[]string{"kind", "status"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "connectdj_active_sessions",
				Help: "Number of active playback sessions",
			},
		),
	}

	prometheus.MustRegister(
		metrics.RemoteCallsTotal,
		metrics.RemoteDuration,
		metrics.MediaLookupsTotal,
		metrics.SessionsTotal,
		metrics.ActiveSessions,
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"connectdj"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}
