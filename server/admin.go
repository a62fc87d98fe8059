package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// configPatch is a partial Config; absent fields keep their current value.
type configPatch struct {
	TickRate            *int     `json:"tickRate,omitempty"`
	Gravity             *float64 `json:"gravity,omitempty"`
	FlapImpulse         *float64 `json:"flapImpulse,omitempty"`
	MoveSpeed           *float64 `json:"moveSpeed,omitempty"`
	ProjectileSpeed     *float64 `json:"projectileSpeed,omitempty"`
	ProjectileOffset    *float64 `json:"projectileOffset,omitempty"`
	ProjectileSize      *float64 `json:"projectileSize,omitempty"`
	FieldWidth          *float64 `json:"fieldWidth,omitempty"`
	FieldHeight         *float64 `json:"fieldHeight,omitempty"`
	PlayerWidth         *float64 `json:"playerWidth,omitempty"`
	PlayerHeight        *float64 `json:"playerHeight,omitempty"`
	CountdownSteps      *int     `json:"countdownSteps,omitempty"`
	CountdownIntervalMs *int     `json:"countdownIntervalMs,omitempty"`
	ScoreToWin          *int     `json:"scoreToWin,omitempty"`
	RequeueAfterMatch   *bool    `json:"requeueAfterMatch,omitempty"`
}

func (p configPatch) apply(c Config) Config {
	if p.TickRate != nil {
		c.TickRate = *p.TickRate
	}
	if p.Gravity != nil {
		c.Gravity = *p.Gravity
	}
	if p.FlapImpulse != nil {
		c.FlapImpulse = *p.FlapImpulse
	}
	if p.MoveSpeed != nil {
		c.MoveSpeed = *p.MoveSpeed
	}
	if p.ProjectileSpeed != nil {
		c.ProjectileSpeed = *p.ProjectileSpeed
	}
	if p.ProjectileOffset != nil {
		c.ProjectileOffset = *p.ProjectileOffset
	}
	if p.ProjectileSize != nil {
		c.ProjectileSize = *p.ProjectileSize
	}
	if p.FieldWidth != nil {
		c.FieldWidth = *p.FieldWidth
	}
	if p.FieldHeight != nil {
		c.FieldHeight = *p.FieldHeight
	}
	if p.PlayerWidth != nil {
		c.PlayerWidth = *p.PlayerWidth
	}
	if p.PlayerHeight != nil {
		c.PlayerHeight = *p.PlayerHeight
	}
	if p.CountdownSteps != nil {
		c.CountdownSteps = *p.CountdownSteps
	}
	if p.CountdownIntervalMs != nil {
		c.CountdownInterval = time.Duration(*p.CountdownIntervalMs) * time.Millisecond
	}
	if p.ScoreToWin != nil {
		c.ScoreToWin = *p.ScoreToWin
	}
	if p.RequeueAfterMatch != nil {
		c.RequeueAfterMatch = *p.RequeueAfterMatch
	}
	return c
}

// HandleAdminConfig reads and updates the match rules.
// GET  /admin/config  current config
// POST /admin/config  JSON patch; applies to matches paired afterwards
func HandleAdminConfig(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, h.Config())
		case http.MethodPost:
			var patch configPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			next := patch.apply(h.Config())
			if err := h.SetConfig(next); err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			h.log.Infow("config updated", "tickRate", next.TickRate, "gravity", next.Gravity,
				"countdownSteps", next.CountdownSteps, "scoreToWin", next.ScoreToWin)
			writeJSON(w, http.StatusOK, next)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleMetrics reports process counters and per-session metrics.
// GET /metrics
func HandleMetrics(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := make(map[string]any)
		for _, s := range h.Directory().Sessions() {
			sessions[s.ID] = s.Metrics().Snapshot()
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"server":   h.Metrics().Snapshot(),
			"waiting":  h.Matchmaker().Waiting(),
			"queue":    h.Matchmaker().Queue(),
			"live":     h.Directory().Len(),
			"sessions": sessions,
		})
	}
}

// HandleSessions lists live sessions.
// GET /sessions
func HandleSessions(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.Directory().List())
	}
}

// HandleSession reports one live session.
// GET /sessions/{id}
func HandleSession(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.Directory().Get(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, s.Info())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
