// @title        Acquisitions API
// @version      1.0
// @description  User accounts with cookie sessions behind bot, shield and per-role rate-limit admission.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/acquisitions/acquisitions-api/internal/api"
	"github.com/acquisitions/acquisitions-api/internal/api/handler"
	"github.com/acquisitions/acquisitions-api/internal/api/session"
	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/service"
	mongodb "github.com/acquisitions/acquisitions-api/internal/infrastructure/db/mongo"
	redisdb "github.com/acquisitions/acquisitions-api/internal/infrastructure/db/redis"
	"github.com/acquisitions/acquisitions-api/internal/infrastructure/password"
	"github.com/acquisitions/acquisitions-api/internal/infrastructure/protection"
	"github.com/acquisitions/acquisitions-api/internal/infrastructure/queue"
	"github.com/acquisitions/acquisitions-api/internal/infrastructure/token"
	"github.com/acquisitions/acquisitions-api/internal/pkg/config"
	"github.com/acquisitions/acquisitions-api/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "acquisitions-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Warn().Msg("JWT_SECRET not set, using the development default")
	}

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "acquisitions-api",
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}

	checks := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	var (
		window protection.WindowStore
		memory *protection.MemoryWindow
		rdb    *goredis.Client
	)
	switch cfg.Admission.Store {
	case "redis":
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		window = redisdb.NewWindowStore(rdb, "")
		checks["redis"] = handler.RedisCheck(rdb)
	default:
		memory = protection.NewMemoryWindow(2 * domain.QuotaWindow)
		window = memory
	}

	// --- Services ---
	g, gctx := errgroup.WithContext(ctx)

	// The hashing pool outlives gctx so in-flight requests can finish during
	// graceful shutdown.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()

	pool := queue.NewDispatcher(cfg.Auth.HashWorkers, logger.Component("hasher"))
	pool.Start(poolCtx)

	hasher, err := password.NewHasher(pool, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	issuer, err := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	if err != nil {
		return err
	}

	engine := protection.NewEngine(protection.NewBotDetector(cfg.Admission.BotAllow), window)

	router := api.NewRouter(api.Dependencies{
		Log:          logger.Component("http"),
		AuthService:  service.NewAuthService(users, hasher, issuer, logger.Component("auth")),
		UserService:  service.NewUserService(users, cfg.Users.EnforceAuthz, logger.Component("users")),
		Admission:    service.NewAdmissionService(engine, logger.Component("admission")),
		Tokens:       issuer,
		Cookies:      session.NewCookies(cfg.IsProduction()),
		Checks:       checks,
		Started:      time.Now(),
		TrustProxy:   cfg.TrustProxy,
		CORSOrigins:  cfg.CORSOrigins,
		EnforceAuthz: cfg.Users.EnforceAuthz,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Lifecycle ---
	if memory != nil {
		g.Go(func() error { return memory.Run(gctx, janitorInterval) })
	}
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("admission_store", cfg.Admission.Store).Msg("server listening")
		if err := router.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		defer stopPool()
		return router.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
