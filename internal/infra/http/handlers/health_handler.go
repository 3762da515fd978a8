package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const healthCheckTimeout = 2 * time.Second

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type connState interface {
	IsClosed() bool
}

type cachePinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthHandler struct {
	DB             dbPinger
	RabbitMQ       connState
	Redis          cachePinger
	ZohoConfigured bool
	StartTime      time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler accepts nil for any dependency that was not started.
func NewHealthHandler(db *sql.DB, rabbitMQ *amqp091.Connection, rdb *redis.Client, zohoConfigured bool) *HealthHandler {
	h := &HealthHandler{ZohoConfigured: zohoConfigured, StartTime: time.Now()}
	if db != nil {
		h.DB = db
	}
	if rabbitMQ != nil {
		h.RabbitMQ = rabbitMQ
	}
	if rdb != nil {
		h.Redis = rdb
	}
	return h
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	deps := make(map[string]string)

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "unhealthy: not connected"
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["redis"] = "healthy"
		}
	} else {
		deps["redis"] = "not configured"
	}

	if h.ZohoConfigured {
		deps["zoho"] = "configured"
	} else {
		deps["zoho"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	if status == "degraded" {
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
