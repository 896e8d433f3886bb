package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusshelf/library-system/internal/infrastructure/db/memory"
)

type downStore struct {
	*memory.Store
}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_Liveness(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/health", "")
	serve(c, NewHealthHandler().Liveness)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_Readiness(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/health/ready", "")
	serve(c, NewReadinessHandler(memory.NewStore(), nil).Readiness)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[readinessResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Dependencies["store"].Status)
	assert.NotContains(t, resp.Dependencies, "redis")
}

func TestHealth_Readiness_Degraded(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/health/ready", "")
	serve(c, NewReadinessHandler(downStore{memory.NewStore()}, nil).Readiness)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decode[readinessResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "connection refused", resp.Dependencies["store"].Error)
}
