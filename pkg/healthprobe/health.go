// Package healthprobe exposes liveness and readiness state over HTTP.
package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe tracks process readiness for the HTTP health endpoints.
type Probe struct {
	startTime time.Time
	ready     atomic.Bool
}

// New creates a Probe anchored at the current time.
func New() *Probe {
	return &Probe{startTime: time.Now()}
}

// SetReady marks the engine as ready (or not) to serve traffic.
func (p *Probe) SetReady(ready bool) {
	p.ready.Store(ready)
}

type response struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Live is the liveness handler: 200 whenever the process is running.
func (p *Probe) Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Status: "alive",
			Uptime: time.Since(p.startTime).String(),
		})
	}
}

// Ready is the readiness handler: 200 once startup completed, 503 before.
func (p *Probe) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !p.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, response{Status: "starting"})
			return
		}
		writeJSON(w, http.StatusOK, response{
			Status: "ready",
			Uptime: time.Since(p.startTime).String(),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
