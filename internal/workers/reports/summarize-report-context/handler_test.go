// internal/workers/reports/summarize-report-context/handler_test.go
package summarizereportcontext

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/conversation"
	"report-workers/internal/reports/interpreter"
	"report-workers/internal/reports/router"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.November, 15, 14, 30, 0, 0, time.UTC)

func createMockJob(variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:           7,
		Type:          TaskType,
		CustomHeaders: "{}",
		Retries:       3,
		Variables:     string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T) (*Handler, *interpreter.Service) {
	t.Helper()
	store := conversation.NewMemoryStore(conversation.MemoryOptions{Now: func() time.Time { return fixedNow }})
	t.Cleanup(func() { _ = store.Close() })

	interp, err := interpreter.New(interpreter.Options{
		Router: router.New(router.Options{Location: time.UTC, Now: func() time.Time { return fixedNow }}),
		Store:  store,
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Contexts:     interp,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h, interp
}

func TestHandler_ParseInput(t *testing.T) {
	h, _ := newTestHandler(t)

	input, err := h.parseInput(createMockJob(map[string]interface{}{"sessionId": "s-1", "other": 1}))
	require.NoError(t, err)
	assert.Equal(t, "s-1", input.SessionID)

	for name, vars := range map[string]map[string]interface{}{
		"missing":    {},
		"empty":      {"sessionId": ""},
		"blank":      {"sessionId": "   "},
		"wrong type": {"sessionId": 42},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.parseInput(createMockJob(vars))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
		})
	}
}

func TestHandler_Execute(t *testing.T) {
	h, interp := newTestHandler(t)
	ctx := context.Background()

	_, err := interp.Route(ctx, "ventas por producto", "s-1", nil)
	require.NoError(t, err)
	_, err = interp.Route(ctx, "en pdf", "s-1", nil)
	require.NoError(t, err)

	out, err := h.Execute(ctx, &Input{SessionID: "s-1"})
	require.NoError(t, err)

	assert.Equal(t, "s-1", out.Summary.SessionID)
	assert.Equal(t, 2, out.Summary.CommandsCount)
	assert.Equal(t, "en pdf", out.Summary.LastCommand)
	assert.Equal(t, catalog.VentasPorProducto, out.Summary.LastReportType)
	assert.Equal(t, catalog.FormatPDF, out.Summary.LastFormat)
}

func TestHandler_Execute_UnknownSessionIsEmpty(t *testing.T) {
	h, _ := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{SessionID: "never-seen"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Summary.CommandsCount)
	assert.Empty(t, out.Summary.LastReportType)
}
