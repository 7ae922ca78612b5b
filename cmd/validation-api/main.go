// cmd/validation-api/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loandoc-workers/internal/api"
	"loandoc-workers/internal/api/handlers"
	"loandoc-workers/internal/audit"
	"loandoc-workers/internal/common/config"
	"loandoc-workers/internal/common/database"
	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/docvalid"
	"loandoc-workers/internal/requirements/aggregate"
	"loandoc-workers/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting validation API...")

	ctx := context.Background()

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("category registry load failed", zap.Error(err))
	}

	// Checklist store: Redis when reachable, in-memory otherwise. The API
	// stays useful for validation even without a shared cache.
	readiness := map[string]handlers.ReadinessCheck{}
	var store aggregate.Store
	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		err = redisClient.Ping(ctx)
	}
	if err != nil {
		zapLog.Warn("redis unavailable, using in-memory checklist store", zap.Error(err))
		store = aggregate.NewMemoryStore()
	} else {
		defer redisClient.Close()
		store = aggregate.NewRedisStore(redisClient.Client)
		readiness["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx)
		}
		zapLog.Info("Redis connected successfully")
	}

	// Elasticsearch audit trail is optional.
	var auditor *audit.Indexer
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err == nil {
		err = esClient.Ping()
	}
	if err != nil {
		zapLog.Warn("elasticsearch unavailable, validation audit trail disabled", zap.Error(err))
	} else {
		auditor = audit.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.AuditIndex, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	router := api.NewRouter(api.RouterDeps{
		Validator:  docvalid.New(reg, log),
		Aggregator: aggregate.NewWithAlwaysRequired(store, reg.AlwaysRequired, log),
		Auditor:    auditor,
		Registry:   reg,
		Version:    cfg.App.Version,
		Readiness:  readiness,
		Logger:     log,
	})

	server := api.NewServer(cfg.API, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("validation API failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.API.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Shutdown error", zap.Error(err))
	}

	zapLog.Info("Validation API stopped gracefully")
}
