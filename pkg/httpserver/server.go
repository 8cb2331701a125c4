// Package httpserver exposes metrics, health, and read-only engine
// state over HTTP.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/healthprobe"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// LedgerSource provides read snapshots of the risk ledger.
type LedgerSource interface {
	Snapshot() *types.RiskLedger
}

// QueueSource lists the trades awaiting approval.
type QueueSource interface {
	List() []types.PendingTrade
}

// Config holds server configuration.
type Config struct {
	Port   string
	Logger *zap.Logger
	Probe  *healthprobe.Probe
	Ledger LedgerSource
	Queue  QueueSource
}

// Server provides the HTTP surface of the engine.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// New creates the HTTP server and mounts its routes.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health/live", cfg.Probe.Live())
	r.Get("/health/ready", cfg.Probe.Ready())

	if cfg.Ledger != nil {
		r.Get("/status", statusHandler(cfg.Ledger, cfg.Queue))
		r.Get("/positions", positionsHandler(cfg.Ledger))
	}
	if cfg.Queue != nil {
		r.Get("/pending", pendingHandler(cfg.Queue))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{server: server, logger: cfg.Logger}
}

// Start blocks until the server stops or fails.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}

type statusResponse struct {
	OpenPositions int      `json:"open_positions"`
	PendingTrades int      `json:"pending_trades"`
	TotalExposure float64  `json:"total_exposure"`
	DailyPnL      float64  `json:"daily_pnl"`
	Paused        bool     `json:"paused"`
	PausedUntil   *string  `json:"paused_until,omitempty"`
	Buckets       bucketsT `json:"bucket_exposure"`
}

type bucketsT map[types.Category]float64

func statusHandler(ledger LedgerSource, queue QueueSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := ledger.Snapshot()

		resp := statusResponse{
			OpenPositions: len(snap.OpenPositions()),
			TotalExposure: snap.TotalExposure,
			DailyPnL:      snap.DailyPnL,
			Paused:        snap.Paused(time.Now()),
			Buckets:       snap.BucketExposure,
		}
		if queue != nil {
			resp.PendingTrades = len(queue.List())
		}
		if !snap.PausedUntil.IsZero() {
			until := snap.PausedUntil.Format(time.RFC3339)
			resp.PausedUntil = &until
		}
		writeJSON(w, resp)
	}
}

func positionsHandler(ledger LedgerSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := ledger.Snapshot()
		open := snap.OpenPositions()
		if r.URL.Query().Get("all") == "true" {
			writeJSON(w, snap.Positions)
			return
		}
		writeJSON(w, open)
	}
}

func pendingHandler(queue QueueSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, queue.List())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
