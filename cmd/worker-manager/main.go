// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"report-workers/internal/common/camunda"
	"report-workers/internal/common/config"
	"report-workers/internal/common/database"
	"report-workers/internal/common/logger"
	"report-workers/internal/common/observability"
	"report-workers/internal/reports/alerts"
	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/conversation"
	"report-workers/internal/reports/interpreter"
	"report-workers/internal/reports/nlp"
	"report-workers/internal/reports/router"

	crc "report-workers/internal/workers/reports/clear-report-context"
	dda "report-workers/internal/workers/reports/dispatch-due-alerts"
	rrc "report-workers/internal/workers/reports/route-report-command"
	sra "report-workers/internal/workers/reports/schedule-report-alert"
	src "report-workers/internal/workers/reports/summarize-report-context"
)

// reportWorker is what every handler under internal/workers/reports exposes.
type reportWorker interface {
	GetTaskType() string
	WorkerConfig() config.WorkerConfig
	Handle(client worker.JobClient, job entities.Job)
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting report worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	tracing, err := observability.NewTracing(observability.TracingOptions{
		Enabled:        cfg.Tracing.Enabled,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		ServiceName:    cfg.Tracing.ServiceName,
		Version:        cfg.App.Version,
	})
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error flushing traces", zap.Error(err))
		}
	}()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry (alert workers only) ---
	var pg *database.PostgresClient
	var alertRepo *alerts.PostgresRepository
	if config.IsWorkerEnabled(cfg, sra.TaskType) || config.IsWorkerEnabled(cfg, dda.TaskType) {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			// Test the connection with context
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		alertRepo = alerts.NewPostgresRepository(pg.DB, log)
		if err := alertRepo.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("alert schema setup failed", zap.Error(err))
		}
	}

	// --- Init Redis with retry (shared conversation store only) ---
	var rdb *database.RedisClient
	if cfg.Conversation.Store == conversation.StoreRedis {
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Report routing core ---
	location, err := cfg.Router.Location()
	if err != nil {
		zapLog.Fatal("invalid router timezone", zap.Error(err))
	}

	cat := catalog.Builtin()
	reportRouter := router.New(router.Options{
		Catalog:       cat,
		Location:      location,
		DefaultFormat: catalog.Format(cfg.Router.DefaultFormat),
	})

	var storeClient redis.UniversalClient
	if rdb != nil {
		storeClient = rdb.Client
	}
	store, err := conversation.NewStore(cfg.Conversation, storeClient, log)
	if err != nil {
		zapLog.Fatal("conversation store init failed", zap.Error(err))
	}
	defer store.Close()

	interp, err := interpreter.New(interpreter.Options{
		Router:        reportRouter,
		Store:         store,
		Voter:         nlp.FromConfig(cfg.Classifier, cat, log, tracing.Tracer("report-classifier")),
		Logger:        log,
		Observability: obs,
		Tracer:        tracing.Tracer("report-interpreter"),
	})
	if err != nil {
		zapLog.Fatal("interpreter init failed", zap.Error(err))
	}

	// --- Handlers ---
	var handlers []reportWorker

	routeHandler, err := rrc.NewHandler(rrc.HandlerOptions{AppConfig: cfg, Interpreter: interp, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create route-report-command handler", zap.Error(err))
	}
	handlers = append(handlers, routeHandler)

	clearHandler, err := crc.NewHandler(crc.HandlerOptions{AppConfig: cfg, Contexts: interp, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create clear-report-context handler", zap.Error(err))
	}
	handlers = append(handlers, clearHandler)

	summaryHandler, err := src.NewHandler(src.HandlerOptions{AppConfig: cfg, Contexts: interp, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create summarize-report-context handler", zap.Error(err))
	}
	handlers = append(handlers, summaryHandler)

	if alertRepo != nil {
		scheduleHandler, err := sra.NewHandler(sra.HandlerOptions{
			AppConfig:  cfg,
			Router:     reportRouter,
			Repository: alertRepo,
			Logger:     log,
		})
		if err != nil {
			zapLog.Fatal("failed to create schedule-report-alert handler", zap.Error(err))
		}
		handlers = append(handlers, scheduleHandler)

		dispatchHandler, err := dda.NewHandler(dda.HandlerOptions{
			AppConfig:  cfg,
			Repository: alertRepo,
			Logger:     log,
		})
		if err != nil {
			zapLog.Fatal("failed to create dispatch-due-alerts handler", zap.Error(err))
		}
		handlers = append(handlers, dispatchHandler)
	}

	registry := camunda.NewRegistry(zeebe.GetClient(), log, obs)
	for _, h := range handlers {
		if err := registry.Start(h.GetTaskType(), h.WorkerConfig(), h.Handle); err != nil {
			zapLog.Fatal("failed to start worker", zap.String("taskType", h.GetTaskType()), zap.Error(err))
		}
	}
	zapLog.Info("Report workers registered", zap.Strings("taskTypes", registry.TaskTypes()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := readinessChecks(r.Context(), zeebe, pg, rdb)
		status := http.StatusOK
		body := map[string]string{"status": "ready", "time": time.Now().Format(time.RFC3339)}
		for name, err := range checks {
			if err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "not_ready"
				body[name] = err.Error()
			}
		}
		writeStatus(w, status, body)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{Addr: ":8080", Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registry.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func readinessChecks(ctx context.Context, zeebe *camunda.Client, pg *database.PostgresClient, rdb *database.RedisClient) map[string]error {
	checks := map[string]error{"zeebe": zeebe.HealthCheck(ctx)}
	if pg != nil {
		checks["postgres"] = pg.Ping(ctx)
	}
	if rdb != nil {
		checks["redis"] = rdb.Ping(ctx)
	}
	return checks
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
