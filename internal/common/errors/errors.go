// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputParsingFailed    ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"

	ErrCodeContextStoreFailed ErrorCode = "CONTEXT_STORE_FAILED"
	ErrCodeContextConflict    ErrorCode = "CONTEXT_CONFLICT"

	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"

	ErrCodeAlertNotDetected     ErrorCode = "ALERT_NOT_DETECTED"
	ErrCodeAlertScheduleInvalid ErrorCode = "ALERT_SCHEDULE_INVALID"
	ErrCodeAlertPersistFailed   ErrorCode = "ALERT_PERSIST_FAILED"
	ErrCodeAlertQueryFailed     ErrorCode = "ALERT_QUERY_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeBusinessRule     ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInputParsingFailedError is returned when job variables cannot be decoded.
func NewInputParsingFailedError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse job variables", err.Error(), false, err)
}

// NewInputValidationFailedError is returned when job variables break the input schema.
func NewInputValidationFailedError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Input validation failed", details, false, nil)
}

// NewCatalogInvalidError reports a broken report catalog. Startup must abort on it.
func NewCatalogInvalidError(details string) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Report catalog is invalid", details, false, nil)
}

// NewContextStoreFailedError wraps a failure of the conversation store backend.
func NewContextStoreFailedError(sessionID string, err error) *StandardError {
	return newError(ErrCodeContextStoreFailed, "Conversation context store error",
		fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()), true, err)
}

// NewContextConflictError is returned when concurrent writers kept invalidating
// an optimistic update for the same session.
func NewContextConflictError(sessionID string, attempts int) *StandardError {
	return newError(ErrCodeContextConflict, "Conversation context update conflict",
		fmt.Sprintf("sessionId: %s, attempts: %d", sessionID, attempts), true, nil)
}

// NewClassifierUnavailableError describes a failed external classifier call.
func NewClassifierUnavailableError(err error) *StandardError {
	return newError(ErrCodeClassifierUnavailable, "External classifier unavailable", err.Error(), true, err)
}

// NewAlertNotDetectedError is returned when a command carries no alert wording.
func NewAlertNotDetectedError(command string) *StandardError {
	return newError(ErrCodeAlertNotDetected, "Command is not an alert request",
		fmt.Sprintf("command: %s", command), false, nil)
}

// NewAlertScheduleInvalidError is returned when condition or schedule payloads fail validation.
func NewAlertScheduleInvalidError(details string) *StandardError {
	return newError(ErrCodeAlertScheduleInvalid, "Alert schedule is invalid", details, false, nil)
}

// NewAlertPersistFailedError wraps a failed alert write.
func NewAlertPersistFailedError(err error) *StandardError {
	return newError(ErrCodeAlertPersistFailed, "Failed to persist alert", err.Error(), true, err)
}

// NewAlertQueryFailedError wraps a failed alert read.
func NewAlertQueryFailedError(err error) *StandardError {
	return newError(ErrCodeAlertQueryFailed, "Failed to query alerts", err.Error(), true, err)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false, nil)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes modelled
// in the report workflows.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputParsingFailed:       "INPUT_PARSING_FAILED",
	ErrCodeInputValidationFailed:    "INPUT_VALIDATION_FAILED",
	ErrCodeCatalogInvalid:           "CATALOG_INVALID",
	ErrCodeContextStoreFailed:       "CONTEXT_STORE_FAILED",
	ErrCodeContextConflict:          "CONTEXT_CONFLICT",
	ErrCodeClassifierUnavailable:    "CLASSIFIER_UNAVAILABLE",
	ErrCodeAlertNotDetected:         "ALERT_NOT_DETECTED",
	ErrCodeAlertScheduleInvalid:     "ALERT_SCHEDULE_INVALID",
	ErrCodeAlertPersistFailed:       "ALERT_PERSIST_FAILED",
	ErrCodeAlertQueryFailed:         "ALERT_QUERY_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
}

// GetRetryCount returns the retry budget for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeContextStoreFailed,
		ErrCodeAlertPersistFailed,
		ErrCodeAlertQueryFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeContextConflict,
		ErrCodeTimeout:
		return 2

	case ErrCodeClassifierUnavailable:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain. Anything else becomes
// a non-retryable INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// CodeOf returns the code of the StandardError in err's chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	return AsStandardError(err).Code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INPUT_"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "CATALOG_"):
		return "CONFIGURATION"
	case strings.HasPrefix(codeStr, "CONTEXT_"):
		return "CONVERSATION"
	case strings.HasPrefix(codeStr, "CLASSIFIER_"):
		return "AI"
	case strings.HasPrefix(codeStr, "ALERT_"):
		return "ALERTS"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
