// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decodeData unwraps the standard {"data": ...} success envelope.
func decodeData(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Data
}

/*
TestReadiness_AllHealthy returns 200 and "ready" when both checks pass.
*/
func TestReadiness_AllHealthy(t *testing.T) {
	_, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return nil },
		CheckCache:    func() error { return nil },
	}, discardLogger())

	rr := httptest.NewRecorder()
	readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeData(t, rr.Body.Bytes())
	assert.Equal(t, "ready", body["status"])
}

/*
TestReadiness_DatabaseDown_ReturnsServiceUnavailable confirms a SQLite
failure is a hard readiness-blocking dependency.
*/
func TestReadiness_DatabaseDown_ReturnsServiceUnavailable(t *testing.T) {
	_, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return errors.New("disk full") },
		CheckCache:    func() error { return nil },
	}, discardLogger())

	rr := httptest.NewRecorder()
	readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := decodeData(t, rr.Body.Bytes())
	assert.Equal(t, "degraded", body["status"])
}

/*
TestReadiness_CacheDown_StillReady confirms a Redis failure is reported
but does not flip overall readiness, since the dedup cache degrades to a
no-op on its own (SPEC_FULL.md §13).
*/
func TestReadiness_CacheDown_StillReady(t *testing.T) {
	_, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return nil },
		CheckCache:    func() error { return errors.New("connection refused") },
	}, discardLogger())

	rr := httptest.NewRecorder()
	readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeData(t, rr.Body.Bytes())
	assert.Equal(t, "ready", body["status"])

	checks, ok := body["checks"].([]any)
	require.True(t, ok)
	require.Len(t, checks, 2)
	redisCheck := checks[1].(map[string]any)
	assert.Equal(t, "redis", redisCheck["name"])
	assert.Equal(t, false, redisCheck["ok"])
}

/*
TestReadiness_NoCacheConfigured_OmitsCacheCheck confirms the cache probe
is skipped entirely (not merely reported healthy) when Redis isn't wired.
*/
func TestReadiness_NoCacheConfigured_OmitsCacheCheck(t *testing.T) {
	_, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return nil },
	}, discardLogger())

	rr := httptest.NewRecorder()
	readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	body := decodeData(t, rr.Body.Bytes())
	checks, ok := body["checks"].([]any)
	require.True(t, ok)
	assert.Len(t, checks, 1)
}

/*
TestLiveness_AlwaysOK confirms the liveness probe never depends on
downstream state.
*/
func TestLiveness_AlwaysOK(t *testing.T) {
	liveness, _ := api.NewHealthHandlers(api.HealthDependencies{}, discardLogger())

	rr := httptest.NewRecorder()
	liveness(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}
