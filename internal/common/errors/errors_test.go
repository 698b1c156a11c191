// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "retryable store failure keeps retry budget",
			err:         NewContextStoreFailedError("s-1", fmt.Errorf("dial tcp: refused")),
			wantCode:    "CONTEXT_STORE_FAILED",
			wantRetries: 3,
		},
		{
			name:        "validation failure is not retried",
			err:         NewInputValidationFailedError("command: required"),
			wantCode:    "INPUT_VALIDATION_FAILED",
			wantRetries: 0,
		},
		{
			name:        "unmapped code falls back to its own name",
			err:         NewBusinessRuleError("nope", "details"),
			wantCode:    "BUSINESS_RULE_VIOLATION",
			wantRetries: 0,
		},
		{
			name:        "non-retryable flag zeroes retries",
			err:         &StandardError{Code: ErrCodeAlertPersistFailed, Message: "x", Retryable: false},
			wantCode:    "ALERT_PERSIST_FAILED",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, tt.err.Message, vars["errorMessage"])
		})
	}
}

func TestAsStandardError(t *testing.T) {
	t.Run("finds wrapped standard error", func(t *testing.T) {
		inner := NewAlertQueryFailedError(fmt.Errorf("conn reset"))
		wrapped := fmt.Errorf("dispatch: %w", inner)

		got := AsStandardError(wrapped)
		assert.Same(t, inner, got)
		assert.Equal(t, ErrCodeAlertQueryFailed, CodeOf(wrapped))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := AsStandardError(fmt.Errorf("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.False(t, got.Retryable)
		assert.Equal(t, "boom", got.Details)
	})

	t.Run("cause is reachable through Unwrap", func(t *testing.T) {
		cause := stderrors.New("redis down")
		err := NewContextStoreFailedError("s-2", cause)
		require.ErrorIs(t, err, cause)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputValidationFailed))
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeCatalogInvalid))
	assert.Equal(t, "CONVERSATION", GetErrorCategory(ErrCodeContextConflict))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeClassifierUnavailable))
	assert.Equal(t, "ALERTS", GetErrorCategory(ErrCodeAlertNotDetected))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeTimeout))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeContextStoreFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeClassifierUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeAlertNotDetected))
}

func TestStandardError_WithMetadata(t *testing.T) {
	err := NewAlertNotDetectedError("ventas").WithMetadata("userId", "u-1")
	assert.Equal(t, "u-1", err.Metadata["userId"])
	assert.Contains(t, err.Error(), "ALERT_NOT_DETECTED")
}
