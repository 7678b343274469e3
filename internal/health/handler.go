// Package health implements the §6 HTTP health surface: a single endpoint
// reporting service and database status, modeled on the teacher's Ready
// handler but trimmed to the three fields spec.md names.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"mtfscanner/internal/httputil"
)

type Handler struct {
	pool        *pgxpool.Pool
	serviceName string
	pingTimeout time.Duration
}

func NewHandler(pool *pgxpool.Pool, serviceName string) *Handler {
	return &Handler{pool: pool, serviceName: serviceName, pingTimeout: time.Second}
}

type databaseStatus struct {
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

type response struct {
	Status   string         `json:"status"`
	Database databaseStatus `json:"database"`
	Service  string         `json:"service"`
}

// Get reports "ok"/200 when the database is reachable and "degraded"/503
// otherwise.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	db := h.pingDatabase(r.Context())

	status := "ok"
	httpStatus := http.StatusOK
	if !db.Reachable {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, httpStatus, response{
		Status:   status,
		Database: db,
		Service:  h.serviceName,
	})
}

func (h *Handler) pingDatabase(ctx context.Context) databaseStatus {
	if h.pool == nil {
		return databaseStatus{Error: "pool is not configured"}
	}
	pingCtx, cancel := context.WithTimeout(ctx, h.pingTimeout)
	defer cancel()
	if err := h.pool.Ping(pingCtx); err != nil {
		return databaseStatus{Error: err.Error()}
	}
	return databaseStatus{Reachable: true}
}
