package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tokobaju/storefront/internal/api"
	"github.com/tokobaju/storefront/internal/api/cookie"
	"github.com/tokobaju/storefront/internal/core/ports"
	"github.com/tokobaju/storefront/internal/core/service"
	"github.com/tokobaju/storefront/internal/infrastructure/db/memory"
	mongodb "github.com/tokobaju/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/tokobaju/storefront/internal/infrastructure/db/redis"
	"github.com/tokobaju/storefront/internal/infrastructure/queue"
	"github.com/tokobaju/storefront/internal/infrastructure/security"
	"github.com/tokobaju/storefront/internal/pkg/config"
	"github.com/tokobaju/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Storefront API
// @version      1.0
// @description  Accounts, sessions and catalog for the storefront.
// @BasePath     /
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("storefront stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	users := mongodb.NewUserRepository(db)
	products := mongodb.NewProductRepository(db)
	events := mongodb.NewAuthEventRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, products, events); err != nil {
		return err
	}

	// --- Sessions ---
	var (
		sessions ports.SessionStore
		rdb      *goredis.Client
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = redisdb.NewSessionStore(rdb)
	default:
		store := memory.NewSessionStore(logger.Component("session"), memory.WithSweepInterval(cfg.Session.SweepInterval))
		store.Start(ctx)
		defer store.Close()
		sessions = store
	}
	log.Info().Str("store", cfg.Session.Store).Dur("ttl", cfg.Session.TTL).Msg("session store ready")

	// --- Services ---
	pool := queue.NewPool(cfg.Hash.Workers, logger.Component("hash_pool"))
	// Workers outlive the signal context so in-flight requests can drain.
	pool.Start(context.Background())
	defer pool.Stop()

	hasher := security.NewBcryptHasher(cfg.Hash.BcryptCost, pool)
	directory := service.NewUserDirectory(users, hasher, logger.Component("directory"))
	authService := service.NewAuthService(directory, sessions, hasher, events, cfg.Session.TTL, logger.Component("auth"))
	accessControl := service.NewAccessControl(sessions, logger.Component("access"))
	productService := service.NewProductService(products, logger.Component("catalog"))

	if cfg.Admin.Enabled() {
		admin, err := authService.BootstrapAdmin(ctx, ports.ProvisionInput{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			return err
		}
		log.Info().Str("user_id", admin.ID).Msg("admin account ready")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Access:    accessControl,
		Products:  productService,
		Cookies:   cookie.NewCodec(cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.CookieSecure),
		LoginPath: cfg.Session.LoginPath,
		Mongo:     db,
		Redis:     rdb,
		Logger:    logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting storefront")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
