package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/springzlabs/springz-backend/pkg/config"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(healthConfig())(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", rec.Header().Get("X-Springz-Env"))
}

func TestHealthReadyAllUp(t *testing.T) {
	deps := map[string]Pinger{
		"database": fakePinger{},
		"redis":    fakePinger{},
	}

	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), nil, deps)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ready", body.Data.Status)
	require.Equal(t, "ok", body.Data.Checks["database"])
	require.Equal(t, "ok", body.Data.Checks["redis"])
}

func TestHealthReadyReportsDownDependency(t *testing.T) {
	deps := map[string]Pinger{
		"database": fakePinger{},
		"redis":    fakePinger{err: errors.New("connection refused")},
	}

	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), nil, deps)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "down", body.Error.Details["redis"])
	require.Equal(t, "ok", body.Error.Details["database"])
}

func TestHealthReadySkipsNilDependency(t *testing.T) {
	deps := map[string]Pinger{"pubsub": nil}

	rec := httptest.NewRecorder()
	HealthReady(healthConfig(), nil, deps)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
