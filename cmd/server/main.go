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

	"github.com/arnauze/Noosify/internal/api"
	"github.com/arnauze/Noosify/internal/core/ports"
	"github.com/arnauze/Noosify/internal/infrastructure/backend"
	"github.com/arnauze/Noosify/internal/infrastructure/db/redis"
	"github.com/arnauze/Noosify/internal/pkg/config"
	"github.com/arnauze/Noosify/internal/session"
	"github.com/arnauze/Noosify/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger options come from config, so this one failure predates
		// structured logging.
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	var backendClient ports.BackendClient = backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, log)

	var (
		sessions session.Store
		rdb      *goredis.Client
	)
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		sessions = redis.NewSessionStore(rdb, cfg.Session.Cookie, cfg.Session.TTL, log)
	default:
		sessions = session.NewCookieCodec(cfg.Session.Cookie, cfg.Session.Secret, cfg.Session.TTL)
	}

	e, err := api.NewRouter(backendClient, sessions, cfg.BackendURL, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("backend", cfg.BackendURL).Msg("gateway started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}
