// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"report-workers/internal/common/config"
	"report-workers/internal/common/logger"
	"report-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobWorkerFactory is the subset of zbc.Client needed to open job workers.
type JobWorkerFactory interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

var _ JobWorkerFactory = (zbc.Client)(nil)

// Registry opens one Zeebe job worker per task type and closes them together.
type Registry struct {
	client  JobWorkerFactory
	logger  logger.Logger
	obs     *observability.Observability
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

// NewRegistry builds a registry. obs may be nil.
func NewRegistry(client JobWorkerFactory, log logger.Logger, obs *observability.Observability) *Registry {
	return &Registry{
		client:  client,
		logger:  log,
		obs:     obs,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless wcfg disables it. Starting the
// same task type twice is an error.
func (r *Registry) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) error {
	if !wcfg.Enabled {
		r.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[taskType]; exists {
		return fmt.Errorf("worker for task type %s already started", taskType)
	}

	jw := r.client.NewJobWorker().
		JobType(taskType).
		Handler(r.instrument(taskType, handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Name(fmt.Sprintf("%s-worker", taskType)).
		Open()

	r.workers[taskType] = jw

	r.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return nil
}

// instrument records otel job metrics around handler.
func (r *Registry) instrument(taskType string, handler worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		handler(client, job)
		r.obs.RecordJobProcessed(context.Background(), taskType)
		r.obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
	}
}

// TaskTypes lists the running workers.
func (r *Registry) TaskTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.workers))
	for taskType := range r.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs to drain.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for taskType, jw := range r.workers {
		r.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
		delete(r.workers, taskType)
	}
}
