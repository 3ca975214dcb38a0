package api

import (
	"net/http"

	"ratebank/internal/cache"
)

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Status string `json:"status" example:"ready"`
}

// HandleHealthz godoc
// @Summary Health check (liveness)
// @Description Always returns 200 OK if the service is running. Used for liveness probes.
// @Tags health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}
}

// HandleReadyz godoc
// @Summary Readiness check
// @Description Checks connectivity to the rates cache backend when it is a remote server. Returns 200 only when all dependencies are reachable.
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse "All dependencies ready"
// @Failure 503 {object} ErrorResponse "At least one dependency unavailable"
// @Router /readyz [get]
func HandleReadyz(pingers ...cache.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Cache not ready"})
				return
			}
		}

		writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
	}
}
