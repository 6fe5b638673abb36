package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/dashboardservice/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtime, err := bootstrap.NewRuntime(ctx)
	if err != nil {
		slog.Error("bootstrap failed", "service", "dashboard-service", "error", err.Error())
		os.Exit(1)
	}
	if err := runtime.Run(ctx); err != nil {
		slog.Error("runtime exited", "service", "dashboard-service", "error", err.Error())
		os.Exit(1)
	}
}
