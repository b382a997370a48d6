package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/ledger/internal/command"
	"github.com/eaglebank/ledger/internal/config"
	"github.com/eaglebank/ledger/internal/dbx"
	"github.com/eaglebank/ledger/internal/events"
	"github.com/eaglebank/ledger/internal/handler"
	"github.com/eaglebank/ledger/internal/logging"
	"github.com/eaglebank/ledger/internal/middleware"
	"github.com/eaglebank/ledger/internal/migrations"
	"github.com/eaglebank/ledger/internal/query"
	redisClient "github.com/eaglebank/ledger/internal/redis"
	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/internal/security"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type publisher interface {
	command.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection (system of record)
	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	if cfg.DB.MigrateOnStart {
		if err := migrations.Up(cfg.DB.URL, logging.Component(logger, "migrations")); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Redis connection (profile cache, idempotency records, event streams)
	rdb, err := redisClient.Connect(ctx, cfg.Redis, logging.Component(logger, "redis"))
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	pub := newPublisher(cfg, rdb, logging.Component(logger, "events"))
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	// --- CQRS wiring ---
	runner := dbx.NewRunner(db)
	accountRepo := repository.NewAccountRepository()
	userRepo := repository.NewUserRepository()
	profileRepo := repository.NewProfileReadRepository(db, rdb, cfg.ProfileCacheTTL, logging.Component(logger, "profile-cache"))
	pins := security.NewBcryptPinHasher(cfg.PinHashCost)

	accountCommands := command.NewAccountCommandService(runner, accountRepo, pins, profileRepo, pub, logging.Component(logger, "accounts"))
	userCommands := command.NewUserCommandService(runner, userRepo, accountRepo, pins, pub, logging.Component(logger, "users"))
	profileQueries := query.NewProfileQueryService(profileRepo)

	gin.SetMode(cfg.GinMode)
	router := handler.NewRouter(handler.RouterDeps{
		Users:       handler.NewUserHandler(userCommands, profileQueries, logger),
		Accounts:    handler.NewAccountHandler(accountCommands, logger),
		Auth:        newAuthenticator(cfg),
		Idempotency: redisClient.NewIdempotencyStore(rdb, cfg.IdempotencyTTL, cfg.IdempotencyLockTTL, logging.Component(logger, "idempotency")),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Ledger service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func newPublisher(cfg *config.Config, rdb *goredis.Client, logger *zap.Logger) publisher {
	switch cfg.EventsDriver {
	case config.EventsDriverKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
	case config.EventsDriverNone:
		return events.NopPublisher{}
	default:
		return events.NewStreamPublisher(rdb)
	}
}

func newAuthenticator(cfg *config.Config) middleware.Authenticator {
	if cfg.AuthMode == config.AuthModeJWT {
		return middleware.JWTAuthenticator([]byte(cfg.JWTSecret))
	}
	return middleware.StubAuthenticator
}
