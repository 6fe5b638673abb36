package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/adapters/http"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/adapters/upstream"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/application"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/health"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/logging"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/redisx"
)

const serviceName = "dashboard-service"

type Runtime struct {
	cfg        Config
	httpServer *http.Server
	cleanup    []func()
}

func NewRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(serviceName, cfg.LogLevel)

	runtime := &Runtime{cfg: cfg}

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

	service := application.NewService(
		upstream.NewUserClient(cfg.UserServiceURL, cfg.AuthTimeout),
		upstream.NewDocumentClient(cfg.DocumentServiceURL, cfg.DataTimeout),
		cfg.Version,
	)

	runtime.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpadapter.NewRouter(httpadapter.NewHandler(service), gateway),
		ReadHeaderTimeout: 5 * time.Second,
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
