package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	records []health.HealthRecord
}

func (f *fakeLedger) GetStatus(ctx context.Context) ([]health.HealthRecord, error) {
	return f.records, nil
}

func (f *fakeLedger) GetEntityStatus(ctx context.Context, entityType health.EntityType, entityID string) (health.HealthRecord, error) {
	for _, r := range f.records {
		if r.EntityType == entityType && r.EntityID == entityID {
			return r, nil
		}
	}
	return health.HealthRecord{EntityType: entityType, EntityID: entityID, Status: health.StatusUnknown}, nil
}

func (f *fakeLedger) ReportFailure(ctx context.Context, entityType health.EntityType, entityID string, message string) {
}
func (f *fakeLedger) ReportSuccess(ctx context.Context, entityType health.EntityType, entityID string) {
}
func (f *fakeLedger) Close() error { return nil }

func healthCall(t *testing.T, ledger health.IHealthUsecase, path, token string) (int, envelope) {
	t.Helper()
	app := NewBridgeApp(testConfig(), &fakeBridge{}, ledger)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealthRoutes(t *testing.T) {
	now := time.Date(2025, 12, 8, 14, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{records: []health.HealthRecord{
		{ID: "a", EntityType: health.EntityBackend, EntityID: "http://127.0.0.1:5000", Status: health.StatusOk, LastChecked: now, LastSuccess: &now},
		{ID: "b", EntityType: health.EntityBot, EntityID: "default", Status: health.StatusError, LastMessage: "stopped", LastChecked: now},
	}}

	t.Run("requires token", func(t *testing.T) {
		status, env := healthCall(t, ledger, "/health/status", "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", env.Code)
	})

	t.Run("all records", func(t *testing.T) {
		status, env := healthCall(t, ledger, "/health/status", testToken)
		require.Equal(t, http.StatusOK, status)

		var records []health.HealthRecord
		require.NoError(t, json.Unmarshal(env.Results, &records))
		assert.Len(t, records, 2)
	})

	t.Run("filtered by entity", func(t *testing.T) {
		status, env := healthCall(t, ledger, "/health/backend", testToken)
		require.Equal(t, http.StatusOK, status)

		var records []health.HealthRecord
		require.NoError(t, json.Unmarshal(env.Results, &records))
		require.Len(t, records, 1)
		assert.Equal(t, health.StatusOk, records[0].Status)
	})

	t.Run("single record", func(t *testing.T) {
		status, env := healthCall(t, ledger, "/health/bot?id=missing", testToken)
		require.Equal(t, http.StatusOK, status)

		var record health.HealthRecord
		require.NoError(t, json.Unmarshal(env.Results, &record))
		assert.Equal(t, health.StatusUnknown, record.Status)
	})

	t.Run("unknown entity", func(t *testing.T) {
		status, env := healthCall(t, ledger, "/health/mcp", testToken)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", env.Code)
	})
}
