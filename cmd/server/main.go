package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/band-manager/internal/config"
	"github.com/iliyamo/band-manager/internal/database"
	"github.com/iliyamo/band-manager/internal/handler"
	"github.com/iliyamo/band-manager/internal/logging"
	"github.com/iliyamo/band-manager/internal/middleware"
	"github.com/iliyamo/band-manager/internal/queue"
	"github.com/iliyamo/band-manager/internal/repository"
	"github.com/iliyamo/band-manager/internal/router"
	"github.com/iliyamo/band-manager/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	dotenv := config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.IsDev())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if dotenv {
		log.Debug("loaded .env")
	}

	db, err := database.Open(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, db)
	cancel()
	if err != nil {
		return err
	}

	// Redis is optional: without it caching and rate limiting pass through.
	var rdb *redis.Client
	if client, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
		log.Warn("redis unavailable, cache and rate limits disabled", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	broker := config.LoadBrokerConfig()
	var events handler.EventPublisher = service.NopPublisher{}
	if broker.Enabled {
		pub := service.NewShowPublisher(broker, log)
		defer pub.Close()
		events = pub
	}

	shows := repository.NewShowRepo(db)
	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	expenses := repository.NewExpenseRepo(db)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)

	guards := router.Guards{
		Authenticate: middleware.Authenticate(cfg.JWTSecret, sessions, users, log),
		Cache:        cache.Middleware(),
		LoginLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig("login"), rdb, log),
		ResetLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig("reset"), rdb, log),
	}
	dashboards := handler.NewDashboardHandler(shows, expenses, log, cfg.Location)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions, log), guards)
	router.RegisterShows(e,
		handler.NewShowHandler(shows, events, cache, log, cfg.Location),
		handler.NewDirectoryHandler(shows, log, cfg.Location),
		guards)
	router.RegisterAdmin(e, dashboards, handler.NewExpenseHandler(expenses, cache, log, cfg.Location), guards)
	router.RegisterMember(e, dashboards, handler.NewMemberHandler(users, cache, log), guards)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	addr := ":" + cfg.Port
	g.Go(func() error {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if broker.Enabled {
		consumer := &queue.ActivityConsumer{URL: broker.URL, Queue: broker.Queue, Dir: broker.LogDir, Log: log}
		g.Go(func() error { return consumer.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
