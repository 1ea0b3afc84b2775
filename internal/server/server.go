// Package server exposes the HTTP surface used to trigger refresh runs
// on a schedule.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/contriborg/contribsync/internal/metrics"
)

// Runner performs one refresh run.
type Runner interface {
	Refresh(ctx context.Context) error
}

// Server wires the trigger endpoint, health check and metrics routes.
type Server struct {
	runner Runner
	addr   string
	logger *logrus.Logger
}

// New creates a Server listening on addr.
func New(runner Runner, addr string, logger *logrus.Logger) *Server {
	return &Server{
		runner: runner,
		addr:   addr,
		logger: logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/refresh", s.handleRefresh)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe blocks serving the route table.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.WithField("addr", s.addr).Info("listening")
	return srv.ListenAndServe()
}

// handleRefresh runs the pipeline. Success is a 200 with an empty body;
// any failure is a 500, with the diagnostic detail going to the log sink
// only.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := s.runner.Refresh(r.Context())
	metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		s.logger.WithError(err).Error("contribution refresh failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	metrics.RefreshTotal.WithLabelValues("success").Inc()
	metrics.LastSuccess.SetToCurrentTime()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
