package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cacheadapter "github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/adapters/cache"
	httpadapter "github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/adapters/http"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/adapters/postgres"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/adapters/security"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/application"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/health"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/logging"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/redisx"
)

const serviceName = "user-service"

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

	redisClient, err := redisx.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}

	signer, err := security.NewJWTSigner(cfg.SigningKeyPEM, cfg.TokenIssuer)
	if err != nil {
		return nil, err
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			TokenTTL:             cfg.TokenTTL,
			DefaultRole:          cfg.DefaultRole,
			FailedLoginThreshold: cfg.LoginThreshold,
			LockoutDuration:      cfg.LockoutFor,
		},
		Users:       postgres.NewUserRepository(db),
		Lockouts:    cacheadapter.NewRedisLockoutStore(redisClient),
		Revocations: cacheadapter.NewRedisRevocationStore(redisClient),
		Hasher:      security.NewBcryptHasher(12),
		Signer:      signer,
	})

	publisher := outbox.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	worker := outbox.NewWorker(serviceName, postgres.NewOutboxRepository(db), publisher, cfg.OutboxInterval, cfg.OutboxBatch)

	runtime := &Runtime{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpadapter.NewRouter(httpadapter.NewHandler(service)),
			ReadHeaderTimeout: 5 * time.Second,
		},
		outboxWorker: worker,
	}
	runtime.cleanup = append(runtime.cleanup, func() { _ = publisher.Close() })
	runtime.cleanup = append(runtime.cleanup, func() { _ = redisClient.Close() })
	if sqlDB, err := db.DB(); err == nil {
		runtime.cleanup = append(runtime.cleanup, func() { _ = sqlDB.Close() })
	}
	return runtime, nil
}

// Run serves HTTP, the gRPC health probe, and the outbox worker until the
// context is cancelled, then shuts everything down in order.
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
