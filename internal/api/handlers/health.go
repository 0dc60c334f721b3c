package handlers

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness and dependency readiness. Redis is an
// optional dependency here; a nil client simply drops that check.
type HealthHandler struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	type check struct {
		name string
		ping func(context.Context) error
	}

	var deps []check
	if h.db != nil {
		deps = append(deps, check{"database", h.db.Ping})
	}
	if h.redis != nil {
		deps = append(deps, check{"redis", func(ctx context.Context) error {
			return h.redis.Ping(ctx).Err()
		}})
	}

	status := http.StatusOK
	results := make(map[string]string, len(deps))
	for _, d := range deps {
		if err := d.ping(r.Context()); err != nil {
			results[d.name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			results[d.name] = "ok"
		}
	}

	body := map[string]interface{}{"checks": results}
	if status == http.StatusOK {
		body["status"] = "ok"
	} else {
		body["status"] = "unhealthy"
	}
	writeJSON(w, status, body)
}
