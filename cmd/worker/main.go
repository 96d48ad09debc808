package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/vibe-gaming/auth-service/internal/config"
	"github.com/vibe-gaming/auth-service/internal/db"
	"github.com/vibe-gaming/auth-service/internal/queue/asynqserver"
	"github.com/vibe-gaming/auth-service/internal/queue/client"
	"github.com/vibe-gaming/auth-service/internal/queue/task"
	"github.com/vibe-gaming/auth-service/internal/repository"
	"github.com/vibe-gaming/auth-service/internal/service"
	"github.com/vibe-gaming/auth-service/internal/worker"
	"github.com/vibe-gaming/auth-service/pkg/hash"
	"github.com/vibe-gaming/auth-service/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const startupPurgeTaskID = "purgeExpiredTokens:startup"

func main() {
	cfg := config.MustLoad()

	appLogger := logger.Init(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	appLogger.Info("starting auth worker", zap.String("env", cfg.Env), zap.String("cronspec", cfg.Purge.Cronspec))

	if cfg.Storage.Type != config.StorageTypeMySQL {
		appLogger.Error("worker requires mysql storage", zap.String("storage", cfg.Storage.Type))
		os.Exit(1)
	}

	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		appLogger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			appLogger.Error("error when closing", zap.Error(err))
		}
	}()

	services := service.NewServices(service.Deps{
		Config: cfg,
		Hasher: hash.NewBcryptHasher(bcrypt.DefaultCost),
		Repos:  repository.NewRepositories(dbMySQL),
	})
	workers := worker.NewWorkers(worker.Deps{Services: services})

	srv, mux := asynqserver.New(cfg, workers)
	if err := srv.Start(mux); err != nil {
		appLogger.Error("asynq server start failed", zap.Error(err))
		return
	}

	scheduler, err := asynqserver.NewScheduler(cfg)
	if err != nil {
		appLogger.Error("asynq scheduler creation failed", zap.Error(err))
		srv.Shutdown()
		return
	}
	if err := scheduler.Start(); err != nil {
		appLogger.Error("asynq scheduler start failed", zap.Error(err))
		srv.Shutdown()
		return
	}

	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer asynqClient.Close()
	restore := client.SetClient(asynqClient)
	defer restore()

	// do not wait a full period after a restart
	_, err = client.Enqueue(context.Background(), task.NewPurgeExpiredTokensTask(), asynq.TaskID(startupPurgeTaskID))
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		appLogger.Warn("startup purge enqueue failed", zap.Error(err))
	}

	appLogger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	scheduler.Shutdown()
	srv.Shutdown()

	appLogger.Info("worker stopped")
}
