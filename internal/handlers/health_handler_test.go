package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

type healthProbeLLM struct {
	healthErr error
}

func (m *healthProbeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (m *healthProbeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return "", errors.New("not implemented")
}

func (m *healthProbeLLM) HealthCheck(ctx context.Context) error { return m.healthErr }
func (m *healthProbeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (m *healthProbeLLM) Close() error                          { return nil }

func TestHealthHandler_Healthy(t *testing.T) {
	handler := NewHealthHandler(&healthProbeLLM{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["healthy"])
	assert.Equal(t, string(interfaces.LLMModeCloud), body["mode"])
	assert.NotEmpty(t, body["version"])
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHealthHandler(&healthProbeLLM{healthErr: errors.New("provider unreachable")}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthHandler(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["healthy"])
	assert.Contains(t, body["error"], "provider unreachable")
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHealthHandler(&healthProbeLLM{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
