package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/adapters/http"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/adapters/postgres"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/adapters/storage"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/application"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/health"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/logging"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/redisx"
)

const serviceName = "document-service"

type Runtime struct {
	cfg          Config
	httpServer   *http.Server
	outboxWorker *outbox.Worker
	cleanup      []func()
}

func NewRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(serviceName, cfg.LogLevel)

	db, err := postgres.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	files, err := storage.NewS3Store(storage.S3Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		return nil, err
	}

	runtime := &Runtime{cfg: cfg}

	// Default to the process-local token cache; Redis is opt-in for multi
	// replica deployments.
	var tokenCache authgw.TokenCache = authgw.NewMemoryCache()
	if cfg.TokenCacheRedis != "" {
		redisClient, err := redisx.Connect(ctx, cfg.TokenCacheRedis)
		if err != nil {
			return nil, err
		}
		tokenCache = authgw.NewRedisCache(redisClient)
		runtime.cleanup = append(runtime.cleanup, func() { _ = redisClient.Close() })
	}
	gateway := authgw.NewGateway(serviceName, tokenCache,
		authgw.NewHTTPVerifier(cfg.UserServiceURL, cfg.AuthTimeout), cfg.TokenCacheTTL)

	service := application.NewService(application.Dependencies{
		Documents: postgres.NewDocumentRepository(db),
		Jenis:     postgres.NewJenisArsipRepository(db),
		Files:     files,
		Version:   cfg.Version,
	})

	publisher := outbox.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	runtime.outboxWorker = outbox.NewWorker(serviceName, postgres.NewOutboxRepository(db), publisher, cfg.OutboxInterval, cfg.OutboxBatch)
	runtime.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpadapter.NewRouter(httpadapter.NewHandler(service), gateway),
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.cleanup = append(runtime.cleanup, func() { _ = publisher.Close() })
	if sqlDB, err := db.DB(); err == nil {
		runtime.cleanup = append(runtime.cleanup, func() { _ = sqlDB.Close() })
	}
	return runtime, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http server starting", "layer", "bootstrap", "addr", r.cfg.HTTPAddr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := health.Serve(ctx, r.cfg.GRPCHealthAddr, serviceName); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()
	go func() {
		_ = r.outboxWorker.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.shutdown()
		return err
	}

	slog.Info("shutting down", "layer", "bootstrap")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := r.httpServer.Shutdown(shutdownCtx)
	r.shutdown()
	return err
}

func (r *Runtime) shutdown() {
	for _, fn := range r.cleanup {
		fn()
	}
}
