package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

type fakeConn struct{ closed bool }

func (f fakeConn) IsClosed() bool { return f.closed }

func checkHealth(h *HealthHandler) (int, HealthResponse) {
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body HealthResponse
	json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body
}

func TestHealthHealthy(t *testing.T) {
	h := &HealthHandler{DB: fakeDB{}, RabbitMQ: fakeConn{}, ZohoConfigured: true, StartTime: time.Now()}

	code, body := checkHealth(h)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Dependencies["database"])
	assert.Equal(t, "configured", body.Dependencies["zoho"])
	assert.Equal(t, "not configured", body.Dependencies["redis"])
}

// TestHealthDegraded - any failing dependency flips the status to 503
func TestHealthDegraded(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	cases := []struct {
		name string
		h    *HealthHandler
		dep  string
	}{
		{"database down", &HealthHandler{DB: fakeDB{err: errors.New("refused")}}, "database"},
		{"rabbit closed", &HealthHandler{DB: fakeDB{}, RabbitMQ: fakeConn{closed: true}}, "rabbitmq"},
		{"redis unreachable", &HealthHandler{DB: fakeDB{}, Redis: rdb}, "redis"},
		{"no database", &HealthHandler{}, "database"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := checkHealth(tc.h)
			require.Equal(t, http.StatusServiceUnavailable, code)
			assert.Equal(t, "degraded", body.Status)
			assert.Contains(t, body.Dependencies[tc.dep], "unhealthy")
		})
	}
}

func TestNewHealthHandlerNilDeps(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil, false)

	assert.Nil(t, h.DB)
	assert.Nil(t, h.RabbitMQ)
	assert.Nil(t, h.Redis)
}
