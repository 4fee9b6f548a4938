package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"radruga/internal/app"
	grpcProtocol "radruga/internal/protocols/grpc"
	httpProtocol "radruga/internal/protocols/http"
	"radruga/pkg/config"
	"radruga/pkg/logger"
	"radruga/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Logging)
	logger.Info("Starting Radruga server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Errorf("Failed to close backends: %v", err)
		}
	}()

	if cfg.Storage.Driver == "postgres" {
		migrateCtx, cancel := utils.WithLongTimeout(ctx)
		if err := app.Migrate(migrateCtx, cfg.Database); err != nil {
			logger.Fatalf("Failed to apply schema: %v", err)
		}
		cancel()
	}

	httpServer := httpProtocol.NewServer(cfg, a.Services, a.Metrics)
	grpcServer := grpcProtocol.NewServer(fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port))
	if err := grpcServer.Start(); err != nil {
		logger.Fatalf("Failed to start gRPC server: %v", err)
	}

	// Warm the rating cache and the catalog before reporting healthy
	warm, warmCtx := errgroup.WithContext(ctx)
	warm.Go(func() error {
		ctx, cancel := utils.WithLongTimeout(warmCtx)
		defer cancel()
		return a.Services.Ratings.BuildRatings(ctx)
	})
	warm.Go(func() error {
		_, err := a.Services.Missions.GetMissionSets(warmCtx)
		return err
	})
	if err := warm.Wait(); err != nil {
		logger.Errorf("Warmup failed, caches will fill on demand: %v", err)
	}
	grpcServer.SetServing(true)

	if cfg.Jobs.Enabled {
		a.Services.Maintenance.Start(ctx, cfg.Jobs.DailyInterval)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Errorf("HTTP server failed: %v", err)
		}
	}

	grpcServer.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	grpcServer.Stop()
	logger.Info("Shutdown complete")
}
