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
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loandoc-workers/internal/audit"
	"loandoc-workers/internal/common/camunda"
	"loandoc-workers/internal/common/config"
	"loandoc-workers/internal/common/database"
	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/common/observability"
	"loandoc-workers/internal/docvalid"
	"loandoc-workers/internal/products"
	"loandoc-workers/internal/requirements/aggregate"
	"loandoc-workers/pkg/registry"

	// Requirements Workers (2)
	rrd "loandoc-workers/internal/workers/requirements/resolve-required-documents"
	sdc "loandoc-workers/internal/workers/requirements/sync-document-checklist"

	// Document Workers (2)
	nmd "loandoc-workers/internal/workers/documents/notify-missing-documents"
	vd "loandoc-workers/internal/workers/documents/validate-document"
)

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
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (best-effort: the audit trail is optional) ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Warn("elasticsearch unavailable, validation audit trail disabled", zap.Error(err))
		esClient = nil
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Shared domain components ---
	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("category registry load failed", zap.Error(err))
	}

	store := aggregate.NewRedisStore(redisClient.Client)
	aggregator := aggregate.NewWithAlwaysRequired(store, reg.AlwaysRequired, log)
	validator := docvalid.New(reg, log)

	var auditor *audit.Indexer
	if esClient != nil {
		auditor = audit.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.AuditIndex, log)
	}

	// Lender products come from the local reference table; a configured
	// staff-backend URL switches the source to the live API.
	var productSource rrd.ProductSource = products.NewRepository(pg.DB, log)
	if cfg.StaffBackend.BaseURL != "" {
		productSource = products.NewClient(
			cfg.StaffBackend.BaseURL,
			cfg.StaffBackend.APIKey,
			time.Duration(cfg.StaffBackend.Timeout)*time.Millisecond,
			log,
		)
	}

	// --- Register Workers ---

	// --- 1. Requirements Workers (2) ---
	if cfg.Workers[rrd.TaskType].Enabled {
		handler := rrd.NewHandler(
			&rrd.Config{
				Timeout: time.Duration(cfg.Workers[rrd.TaskType].Timeout) * time.Millisecond,
			},
			productSource, aggregator, log,
		)
		startWorker(zeebeClient, rrd.TaskType, cfg.Workers[rrd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sdc.TaskType].Enabled {
		handler := sdc.NewHandler(
			&sdc.Config{
				Timeout: time.Duration(cfg.Workers[sdc.TaskType].Timeout) * time.Millisecond,
			},
			aggregator, log,
		)
		startWorker(zeebeClient, sdc.TaskType, cfg.Workers[sdc.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Document Workers (2) ---
	if cfg.Workers[vd.TaskType].Enabled {
		handler := vd.NewHandler(
			&vd.Config{
				Timeout: time.Duration(cfg.Workers[vd.TaskType].Timeout) * time.Millisecond,
			},
			validator, auditor, log,
		)
		startWorker(zeebeClient, vd.TaskType, cfg.Workers[vd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[nmd.TaskType].Enabled {
		handler, err := nmd.NewHandler(
			&nmd.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[nmd.TaskType].Timeout) * time.Millisecond,
			},
			store, reg, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create notify-missing-documents handler", zap.Error(err))
		}
		startWorker(zeebeClient, nmd.TaskType, cfg.Workers[nmd.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			status := "ready"
			code := http.StatusOK
			if err := pg.Ping(r.Context()); err != nil {
				status, code = "not ready", http.StatusServiceUnavailable
			} else if err := redisClient.Ping(r.Context()); err != nil {
				status, code = "not ready", http.StatusServiceUnavailable
			} else if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status, code = "not ready", http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
