// internal/workers/reports/clear-report-context/handler_test.go
package clearreportcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/conversation"
	"report-workers/internal/reports/interpreter"
	"report-workers/internal/reports/router"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClearer struct {
	mock.Mock
}

func (m *MockClearer) Clear(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockClearer) ClearAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func createMockJob(variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:           1,
		Type:          TaskType,
		CustomHeaders: "{}",
		Retries:       3,
		Variables:     string(variablesJSON),
	}}
}

func createValidConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 5 * time.Second, AllowClearAll: true}
}

func newTestHandler(t *testing.T, cfg *Config, contexts ContextClearer) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{CustomConfig: cfg, Contexts: contexts, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return h
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, createValidConfig(), &MockClearer{})

	tests := []struct {
		name      string
		variables map[string]interface{}
		want      *Input
		wantErr   bool
	}{
		{"single session", map[string]interface{}{"sessionId": "s-1"}, &Input{SessionID: "s-1"}, false},
		{"all sessions", map[string]interface{}{"allSessions": true}, &Input{AllSessions: true}, false},
		{"neither", map[string]interface{}{"userId": "u-1"}, nil, true},
		{"blank session", map[string]interface{}{"sessionId": "  "}, nil, true},
		{"wrong type", map[string]interface{}{"allSessions": "yes"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, input)
		})
	}
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_ClearsSession(t *testing.T) {
	store := conversation.NewMemoryStore(conversation.MemoryOptions{})
	t.Cleanup(func() { _ = store.Close() })
	interp, err := interpreter.New(interpreter.Options{Router: router.New(router.Options{}), Store: store})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = interp.Route(ctx, "ventas por producto", "s-1", nil)
	require.NoError(t, err)
	_, err = interp.Route(ctx, "ventas por cliente", "s-2", nil)
	require.NoError(t, err)

	h := newTestHandler(t, createValidConfig(), interp)

	out, err := h.Execute(ctx, &Input{SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, &Output{Cleared: true, SessionID: "s-1"}, out)

	s1, err := interp.Summary(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 0, s1.CommandsCount)

	s2, err := interp.Summary(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, 1, s2.CommandsCount)

	out, err = h.Execute(ctx, &Input{AllSessions: true})
	require.NoError(t, err)
	assert.Equal(t, AllSessionsID, out.SessionID)

	s2, err = interp.Summary(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, 0, s2.CommandsCount)
}

func TestHandler_Execute_ClearAllDisabled(t *testing.T) {
	clearer := &MockClearer{}
	cfg := createValidConfig()
	cfg.AllowClearAll = false

	h := newTestHandler(t, cfg, clearer)
	_, err := h.Execute(context.Background(), &Input{AllSessions: true})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBusinessRule, errors.CodeOf(err))
	clearer.AssertNotCalled(t, "ClearAll", mock.Anything)
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	clearer := &MockClearer{}
	clearer.On("Clear", mock.Anything, "s-1").Return(errors.NewContextStoreFailedError("s-1", fmt.Errorf("connection refused")))

	h := newTestHandler(t, createValidConfig(), clearer)
	_, err := h.Execute(context.Background(), &Input{SessionID: "s-1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeContextStoreFailed, errors.CodeOf(err))
	clearer.AssertExpectations(t)
}

func TestNewHandler_RequiresStore(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: createValidConfig()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context store is required")
}
