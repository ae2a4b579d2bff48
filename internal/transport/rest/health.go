package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type healthState string

const (
	healthUp   healthState = "up"
	healthDown healthState = "down"
)

type componentHealth struct {
	Status     healthState `json:"status"`
	Error      string      `json:"error,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}

type healthResponse struct {
	Service    string                     `json:"service"`
	Status     healthState                `json:"status"`
	CheckedAt  time.Time                  `json:"checked_at"`
	Components map[string]componentHealth `json:"components"`
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// pingHandler answers liveness checks without touching any dependency.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler answers readiness checks and pings the database.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	dbHealth := componentHealth{
		Status:     healthUp,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		dbHealth.Status = healthDown
		dbHealth.Error = err.Error()
	}

	resp := healthResponse{
		Service:    "admin-backend",
		Status:     dbHealth.Status,
		CheckedAt:  time.Now(),
		Components: map[string]componentHealth{"postgres": dbHealth},
	}

	statusCode := http.StatusOK
	if resp.Status == healthDown {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
