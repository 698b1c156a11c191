// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"report-workers/internal/common/config"
	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestClient() *Client {
	return &Client{config: &ClientConfig{
		GatewayAddress:    "localhost:26500",
		ConnectionTimeout: time.Second,
		RequestTimeout:    time.Second,
		RetryConfig:       &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

// ==========================
// Retry Tests
// ==========================

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	c := newTestClient()
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, status.Error(codes.Unavailable, "gateway restarting")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_PermanentErrorIsMapped(t *testing.T) {
	c := newTestClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, status.Error(codes.NotFound, "process definition not found")
	}, "create-instance")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errors.ErrCodeResourceNotFound, errors.CodeOf(err))
}

func TestExecuteWithRetry_ExhaustedBudget(t *testing.T) {
	c := newTestClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, context.DeadlineExceeded
	}, "topology")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "Service 'zeebe' timeout")
}

func TestExecuteWithRetry_AttemptBoundedByRequestTimeout(t *testing.T) {
	c := newTestClient()
	c.config.RequestTimeout = 10 * time.Millisecond
	c.config.RetryConfig.MaxRetries = 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, "complete-job")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
}

func TestExecuteWithRetry_UnknownErrorNotRetried(t *testing.T) {
	c := newTestClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, fmt.Errorf("malformed response")
	}, "topology")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errors.ErrCodeExternalService, errors.CodeOf(err))
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), errors.ErrCodeExternalService},
		{"deadline", status.Error(codes.DeadlineExceeded, "deadline exceeded"), errors.ErrCodeTimeout},
		{"wrapped context deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), errors.ErrCodeTimeout},
		{"not found", status.Error(codes.NotFound, "job not found"), errors.ErrCodeResourceNotFound},
		{"already exists", status.Error(codes.AlreadyExists, "instance exists"), errors.ErrCodeBusinessRule},
		{"failed precondition", status.Error(codes.FailedPrecondition, "job not activatable"), errors.ErrCodeBusinessRule},
		{"permission denied", status.Error(codes.PermissionDenied, "denied"), errors.ErrCodeAuthentication},
		{"unauthenticated", status.Error(codes.Unauthenticated, "no token"), errors.ErrCodeAuthentication},
		{"plain error", fmt.Errorf("something odd"), errors.ErrCodeExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapZeebeError(tt.err, "op", 1)
			assert.Equal(t, tt.want, errors.CodeOf(err))
		})
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(status.Error(codes.Unavailable, "")))
	assert.True(t, isRetryableZeebeError(status.Error(codes.ResourceExhausted, "backpressure")))
	assert.True(t, isRetryableZeebeError(context.DeadlineExceeded))
	assert.False(t, isRetryableZeebeError(status.Error(codes.NotFound, "")))
	assert.False(t, isRetryableZeebeError(context.Canceled))
	assert.False(t, isRetryableZeebeError(fmt.Errorf("timeout in message only")))
}

func TestRetryConfig_Delay(t *testing.T) {
	r := &RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, r.delay(0))
	assert.Equal(t, 200*time.Millisecond, r.delay(1))
	assert.Equal(t, 400*time.Millisecond, r.delay(2))
	assert.Equal(t, 500*time.Millisecond, r.delay(3))
	assert.Equal(t, 500*time.Millisecond, r.delay(70))
}

// ==========================
// Config Tests
// ==========================

func TestClientConfigFrom(t *testing.T) {
	cc := ClientConfigFrom(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		Timeout:        2000,
		RequestTimeout: 3000,
		MaxRetries:     5,
		RetryBaseDelay: 250,
		RetryMaxDelay:  4000,
	})
	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Equal(t, 2*time.Second, cc.ConnectionTimeout)
	assert.Equal(t, 3*time.Second, cc.RequestTimeout)
	assert.Equal(t, &RetryConfig{MaxRetries: 5, BaseDelay: 250 * time.Millisecond, MaxDelay: 4 * time.Second}, cc.RetryConfig)

	assert.False(t, ClientConfigFrom(config.CamundaConfig{TLS: true}).UsePlaintextConnection)
}

func TestNewClientWithConfig_RequiresRetryConfig(t *testing.T) {
	_, err := NewClientWithConfig(&ClientConfig{GatewayAddress: "localhost:26500"})
	assert.EqualError(t, err, "camunda client: retry config is required")
}

// ==========================
// Registry Tests
// ==========================

func TestRegistry_DisabledWorkerIsSkipped(t *testing.T) {
	r := NewRegistry(nil, logger.NewTestLogger(t), nil)

	err := r.Start("route-report-command", config.WorkerConfig{Enabled: false}, func(worker.JobClient, entities.Job) {})
	require.NoError(t, err)
	assert.Empty(t, r.TaskTypes())
	r.Close()
}

func TestRegistry_InstrumentCallsHandler(t *testing.T) {
	r := NewRegistry(nil, logger.NewTestLogger(t), nil)

	called := false
	wrapped := r.instrument("route-report-command", func(worker.JobClient, entities.Job) { called = true })
	wrapped(nil, entities.Job{})

	assert.True(t, called)
}
