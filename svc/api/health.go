package api

import (
	"context"
	"net/http"
	"time"

	"pastebox/svc/util"
)

type HealthResponse struct {
	Status string `json:"status"`
}
type ReadyResponse struct {
	Ready     bool   `json:"ready"`
	Pastes    int    `json:"pastes"`
	RateLimit string `json:"rate_limit"`
	Redis     string `json:"redis"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready fails only when a configured Redis is unreachable; the paste table itself cannot be down.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{
		Ready:     true,
		Pastes:    s.paste.Count(),
		RateLimit: s.lim.Backend(),
		Redis:     "disabled",
	}
	if s.rdb != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		resp.Redis = "up"
		if err := s.rdb.Ping(ctx); err != nil {
			util.Error().Err(err).Msg("redis health check failed")
			resp.Redis = "down"
			resp.Ready = false
		}
	}
	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
