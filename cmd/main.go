package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ugurkiymetli/secret-santa/internal/config"
	"github.com/ugurkiymetli/secret-santa/internal/handler"
	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
	"github.com/ugurkiymetli/secret-santa/internal/service"
	jwtpkg "github.com/ugurkiymetli/secret-santa/pkg/jwt"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to the YAML config file")
	pflag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// 3. Initialize account/event store (PostgreSQL or in-memory)
	var store repository.Store
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		store = repository.NewPGStore(db)
		logger.Info("using PostgreSQL store")
	case "memory":
		store = repository.NewMemoryStore()
		logger.Warn("using in-memory store; data is lost on restart")
	}

	// 4. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	}

	// 5. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.SessionTTL)

	// 6. Initialize services
	gate := service.NewAuthorizationGate(jwtManager, stateStore, store.Accounts(), logger)
	identityService := service.NewIdentityService(store.Accounts())
	eventService := service.NewEventService(store.Events(), store.Accounts())
	assignmentService := service.NewAssignmentService(
		store.Events(), store.Accounts(), stateStore,
		cfg.Assignment.LockTTL, logger,
	)
	cascadeService := service.NewCascadeService(store, logger)

	// 7. Initialize handlers
	authHandler := handler.NewAuthHandler(identityService, gate, cfg.Server.SecureCookies)
	accountHandler := handler.NewAccountHandler(identityService, gate)
	organizerHandler := handler.NewOrganizerHandler(identityService, eventService, assignmentService)
	participantHandler := handler.NewParticipantHandler(eventService, assignmentService)
	superAdminHandler := handler.NewSuperAdminHandler(identityService, eventService, cascadeService)

	// 8. Setup router
	router := handler.SetupRouter(cfg, logger, gate,
		authHandler, accountHandler, organizerHandler, participantHandler, superAdminHandler)

	// 9. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 10. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
