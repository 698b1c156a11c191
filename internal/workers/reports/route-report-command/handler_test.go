// internal/workers/reports/route-report-command/handler_test.go
package routereportcommand

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"report-workers/internal/common/config"
	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/conversation"
	"report-workers/internal/reports/intent"
	"report-workers/internal/reports/interpreter"
	"report-workers/internal/reports/router"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.November, 15, 14, 30, 0, 0, time.UTC)

// ==========================
// Mock Interpreter
// ==========================

type MockInterpreter struct {
	mock.Mock
}

func (m *MockInterpreter) Route(ctx context.Context, command, sessionID string, vote *intent.Vote) (interpreter.Result, error) {
	args := m.Called(ctx, command, sessionID, vote)
	return args.Get(0).(interpreter.Result), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "report-request",
		ElementId:          "Activity_RouteReportCommand",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createValidConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxJobsActive:    5,
		Timeout:          5 * time.Second,
		MaxCommandLength: 200,
	}
}

func newRealInterpreter(t *testing.T) *interpreter.Service {
	t.Helper()
	store := conversation.NewMemoryStore(conversation.MemoryOptions{})
	t.Cleanup(func() { _ = store.Close() })

	svc, err := interpreter.New(interpreter.Options{
		Router: router.New(router.Options{Location: time.UTC, Now: func() time.Time { return fixedNow }}),
		Store:  store,
		Logger: logger.NewTestLogger(t),
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func newTestHandler(t *testing.T, interp Interpreter) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: createValidConfig(),
		Interpreter:  interp,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "valid configuration",
			opts: HandlerOptions{CustomConfig: createValidConfig(), Interpreter: &MockInterpreter{}},
		},
		{
			name:    "missing interpreter",
			opts:    HandlerOptions{CustomConfig: createValidConfig()},
			wantErr: "interpreter is required",
		},
		{
			name: "invalid timeout",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, MaxCommandLength: 10},
				Interpreter:  &MockInterpreter{},
			},
			wantErr: "timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskType, h.GetTaskType())
			assert.True(t, h.IsEnabled())
		})
	}
}

func TestHandler_ConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: false, MaxJobsActive: 20, Timeout: 1500},
	}}

	h, err := NewHandler(HandlerOptions{AppConfig: appCfg, Interpreter: &MockInterpreter{}})
	require.NoError(t, err)

	assert.False(t, h.IsEnabled())
	assert.Equal(t, 20, h.GetConfig().MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, h.GetConfig().Timeout)
	assert.Equal(t, config.WorkerConfig{Enabled: false, MaxJobsActive: 20, Timeout: 1500}, h.WorkerConfig())
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &MockInterpreter{})

	tests := []struct {
		name      string
		variables map[string]interface{}
		want      *Input
		wantCode  errors.ErrorCode
	}{
		{
			name:      "command only",
			variables: map[string]interface{}{"command": "ventas por producto"},
			want:      &Input{Command: "ventas por producto"},
		},
		{
			name:      "with session and unrelated process variables",
			variables: map[string]interface{}{"command": "en pdf", "sessionId": " s-1 ", "userId": "u-9"},
			want:      &Input{Command: "en pdf", SessionID: "s-1"},
		},
		{
			name: "with external vote",
			variables: map[string]interface{}{
				"command":      "como vamos",
				"externalVote": map[string]interface{}{"label": "analisis_rfm", "confidence": 0.8},
			},
			want: &Input{Command: "como vamos", ExternalVote: &intent.Vote{Label: catalog.AnalisisRFM, Confidence: 0.8}},
		},
		{
			name:      "missing command",
			variables: map[string]interface{}{"sessionId": "s-1"},
			wantCode:  errors.ErrCodeInputValidationFailed,
		},
		{
			name:      "empty command is accepted",
			variables: map[string]interface{}{"command": ""},
			want:      &Input{Command: ""},
		},
		{
			name:      "blank command is accepted",
			variables: map[string]interface{}{"command": "   "},
			want:      &Input{Command: "   "},
		},
		{
			name:      "command of wrong type",
			variables: map[string]interface{}{"command": 42},
			wantCode:  errors.ErrCodeInputValidationFailed,
		},
		{
			name:      "command too long",
			variables: map[string]interface{}{"command": string(make([]byte, 201))},
			wantCode:  errors.ErrCodeInputValidationFailed,
		},
		{
			name: "vote confidence out of range",
			variables: map[string]interface{}{
				"command":      "ventas",
				"externalVote": map[string]interface{}{"label": "ventas_basico", "confidence": 1.5},
			},
			wantCode: errors.ErrCodeInputValidationFailed,
		},
		{
			name: "vote without label",
			variables: map[string]interface{}{
				"command":      "ventas",
				"externalVote": map[string]interface{}{"confidence": 0.5},
			},
			wantCode: errors.ErrCodeInputValidationFailed,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(int64(i+1), tt.variables))
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, input)
		})
	}
}

func TestHandler_ParseInput_MalformedVariables(t *testing.T) {
	h := newTestHandler(t, &MockInterpreter{})
	job := createMockJob(1, nil)
	job.Variables = "{not json"

	_, err := h.parseInput(job)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputParsingFailed, errors.CodeOf(err))
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_EmptyCommandRoutesToDefault(t *testing.T) {
	h := newTestHandler(t, newRealInterpreter(t))

	for i, variables := range []map[string]interface{}{
		{"command": ""},
		{"command": "   ", "sessionId": "s-empty"},
	} {
		input, err := h.parseInput(createMockJob(int64(i+1), variables))
		require.NoError(t, err)

		out, err := h.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, catalog.VentasBasico, out.ParsedCommand.ReportType)
		assert.InDelta(t, intent.DefaultConfidence, out.ParsedCommand.Confidence, 1e-9)
		assert.False(t, out.ContextUsed)
	}
}

func TestHandler_Execute_FollowUpUsesContext(t *testing.T) {
	h := newTestHandler(t, newRealInterpreter(t))
	ctx := context.Background()

	first, err := h.Execute(ctx, &Input{Command: "ventas por producto", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, catalog.VentasPorProducto, first.ParsedCommand.ReportType)
	assert.False(t, first.ContextUsed)
	assert.NotEmpty(t, first.Suggestion)

	second, err := h.Execute(ctx, &Input{Command: "ahora en excel", SessionID: "s-1"})
	require.NoError(t, err)
	assert.True(t, second.ContextUsed)
	assert.Equal(t, catalog.VentasPorProducto, second.ParsedCommand.ReportType)
	assert.Equal(t, catalog.FormatExcel, second.ParsedCommand.Format)
	assert.Equal(t, "ventas por producto", second.ParsedCommand.OriginalCommand)
}

func TestHandler_Execute_ExternalVotePassedThrough(t *testing.T) {
	interp := &MockInterpreter{}
	vote := &intent.Vote{Label: catalog.AnalisisABC, Confidence: 0.9}
	interp.On("Route", mock.Anything, "clasificacion de productos", "", vote).
		Return(interpreter.Result{Parsed: router.ParsedCommand{ReportType: catalog.AnalisisABC}}, nil)

	h := newTestHandler(t, interp)
	out, err := h.Execute(context.Background(), &Input{Command: "clasificacion de productos", ExternalVote: vote})
	require.NoError(t, err)

	assert.Equal(t, catalog.AnalisisABC, out.ParsedCommand.ReportType)
	assert.Empty(t, out.Suggestion)
	interp.AssertExpectations(t)
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	interp := &MockInterpreter{}
	interp.On("Route", mock.Anything, "ventas", "s-1", (*intent.Vote)(nil)).
		Return(interpreter.Result{}, errors.NewContextStoreFailedError("s-1", context.DeadlineExceeded))

	h := newTestHandler(t, interp)
	_, err := h.Execute(context.Background(), &Input{Command: "ventas", SessionID: "s-1"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeContextStoreFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, errors.ConvertToBPMNError(stdErr).Retries)
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"zero max jobs", func(c *Config) { c.MaxJobsActive = 0 }, "max_jobs_active must be positive"},
		{"zero command length", func(c *Config) { c.MaxCommandLength = 0 }, "max_command_length must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
