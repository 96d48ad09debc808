package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/vibe-gaming/auth-service/internal/api/http"
	"github.com/vibe-gaming/auth-service/internal/cache"
	"github.com/vibe-gaming/auth-service/internal/config"
	"github.com/vibe-gaming/auth-service/internal/db"
	"github.com/vibe-gaming/auth-service/internal/repository"
	"github.com/vibe-gaming/auth-service/internal/repository/memory"
	"github.com/vibe-gaming/auth-service/internal/server"
	"github.com/vibe-gaming/auth-service/internal/service"
	"github.com/vibe-gaming/auth-service/internal/worker"
	"github.com/vibe-gaming/auth-service/pkg/auth"
	"github.com/vibe-gaming/auth-service/pkg/hash"
	"github.com/vibe-gaming/auth-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	// Dependencies
	appLogger := logger.Init(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	appLogger.Info("starting auth api", zap.String("env", cfg.Env), zap.String("storage", cfg.Storage.Type))
	appLogger.Debug("debug messages are enabled")

	// Storage
	var repos *repository.Repositories
	switch cfg.Storage.Type {
	case config.StorageTypeMySQL:
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
		appLogger.Info("mysql connection done")

		if cfg.Database.Migrate {
			if err := db.Migrate(context.Background(), dbMySQL); err != nil {
				appLogger.Error("mysql migrations failed", zap.Error(err))
				return
			}
			appLogger.Info("mysql migrations applied")
		}

		repos = repository.NewRepositories(dbMySQL)
	case config.StorageTypeMemory:
		appLogger.Warn("in-memory storage, sessions are lost on restart")
		repos = memory.NewRepositories(memory.NewStore())
	default:
		appLogger.Error("unknown storage type", zap.String("storage", cfg.Storage.Type))
		return
	}

	hasher := hash.NewBcryptHasher(bcrypt.DefaultCost)

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		appLogger.Error("auth manager creation err", zap.Error(err))
		return
	}

	// Failed-login throttle
	var loginThrottle service.LoginThrottle
	if cfg.Auth.LoginThrottle.Enabled {
		redisClient, err := cache.NewRedis(cfg.Cache)
		if err != nil {
			appLogger.Error("redis connect problem", zap.Error(err))
			return
		}
		defer func(c redis.UniversalClient) {
			if err := c.Close(); err != nil {
				appLogger.Error("error when closing redis", zap.Error(err))
			}
		}(redisClient)

		loginThrottle = cache.NewLoginAttempts(redisClient, cfg.Auth.LoginThrottle)
		appLogger.Info("login throttle enabled",
			zap.Int("max_attempts", cfg.Auth.LoginThrottle.MaxAttempts),
			zap.Duration("cooldown", cfg.Auth.LoginThrottle.Cooldown),
		)
	}

	// Services, Repos & API Handlers
	services := service.NewServices(service.Deps{
		Config:        cfg,
		Hasher:        hasher,
		TokenManager:  tokenManager,
		LoginThrottle: loginThrottle,
		Repos:         repos,
	})

	if cfg.Seed.AdminPassword != "" {
		created, err := services.Users.EnsureUser(context.Background(), cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
		if err != nil {
			appLogger.Error("seed admin user failed", zap.Error(err))
			return
		}
		if created {
			appLogger.Info("admin user created", zap.String("username", cfg.Seed.AdminUsername))
		}
	}

	// The queue worker cannot reach an in-process store, so purge here.
	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	if cfg.Storage.Type == config.StorageTypeMemory {
		workers := worker.NewWorkers(worker.Deps{Services: services})
		go worker.RunPurgeLoop(purgeCtx, workers.ExpiredTokensPurger, cfg.Purge.Interval)
		appLogger.Info("in-process purge started", zap.Duration("interval", cfg.Purge.Interval))
	}

	handlers := apiHttp.NewHandlers(services, tokenManager, cfg)

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); err != nil {
			appLogger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	appLogger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	stopPurge()

	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("failed to stop server", zap.Error(err))
	}

	appLogger.Info("app stopped")
}
