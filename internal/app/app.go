// Package app assembles storage, infrastructure clients and services from the
// configuration. The server and the admin CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"

	"radruga/internal/core"
	"radruga/internal/lock"
	"radruga/internal/metrics"
	"radruga/internal/notification"
	"radruga/internal/repository"
	"radruga/internal/repository/memory"
	"radruga/pkg/config"
	"radruga/pkg/database"
	"radruga/pkg/logger"
)

// App holds everything a process needs to serve the game
type App struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Services *core.Services
	Metrics  *metrics.Metrics

	closers []func() error
}

// Open connects the configured backends. On failure everything opened so far
// is closed again.
func Open(ctx context.Context, cfg *config.Config) (a *App, err error) {
	a = &App{Config: cfg, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	if err := a.openStorage(); err != nil {
		return nil, err
	}

	var locker lock.Locker
	if cfg.Redis.Enabled {
		client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		locker = lock.NewRedisLocker(client, cfg.Missions.CompletionLockTTL)
		logger.Infof("Completion locks held in Redis at %s", cfg.Redis.Addr)
	}

	var notifier notification.Notifier
	if cfg.RabbitMQ.Enabled {
		publisher, err := notification.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		a.closers = append(a.closers, publisher.Close)
		notifier = notification.NewThrottled(publisher, cfg.RabbitMQ.RatePerSecond, cfg.RabbitMQ.Burst)
		logger.Infof("Notifications published to queue %s", cfg.RabbitMQ.Queue)
	}

	a.Services = core.NewServices(cfg, a.Repos, locker, notifier, a.Metrics)
	return a, nil
}

func (a *App) openStorage() error {
	switch a.Config.Storage.Driver {
	case "memory":
		a.Repos = memory.NewRepositories()
		logger.Warn("Using in-memory storage; data is lost on exit")
		return nil
	case "postgres":
		pool, err := database.NewPGXPool(a.Config.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})
		repos, err := repository.NewPostgresRepositories(pool, a.Config.Missions.MissionCacheSize)
		if err != nil {
			return err
		}
		a.Repos = repos
		logger.Info("Connected to PostgreSQL database")
		return nil
	}
	return fmt.Errorf("unknown storage driver %q", a.Config.Storage.Driver)
}

// Close releases the backends in reverse order of opening
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Migrate applies the embedded schema through database/sql
func Migrate(ctx context.Context, cfg database.Config) error {
	db, err := database.NewDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Migrate(ctx)
}
