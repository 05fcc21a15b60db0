// Command server runs the theatre booking API.
//
//	@title                       Theatre System API
//	@version                     1.0
//	@description                 Plays, showtimes, customers and ticket sales for a theatre association.
//	@BasePath                    /
//	@securityDefinitions.apikey  BearerAuth
//	@in                          header
//	@name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/api"
	"github.com/slconcert/theatre-system/internal/api/handler"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/core/service"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/memory"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/mongo"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/redis"
	"github.com/slconcert/theatre-system/internal/infrastructure/queue"
	"github.com/slconcert/theatre-system/internal/pkg/config"
	"github.com/slconcert/theatre-system/pkg/logger"
)

// devSecret signs tokens when JWT_SECRET is unset in development.
const devSecret = "development-only-secret"

type store interface {
	ports.DocumentStore
	handler.Pinger
}

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "theatre-api",
	})
	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	health := map[string]handler.Pinger{}

	db, closeDB, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()
	health[cfg.StoreDriver] = db

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache := redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		idem = cache
		health["redis"] = cache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency cache enabled")
	}

	var publisher queue.Publisher = queue.NewLogPublisher(logger.Component("events"))
	if cfg.AMQP.URL != "" {
		amqpPub, err := queue.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		publisher = amqpPub
		log.Info().Str("queue", cfg.AMQP.Queue).Msg("publishing ticket events to amqp")
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	events := queue.NewDispatcher(cfg.Events.Workers, publisher, logger.Component("dispatcher"))
	events.Start(workersCtx)

	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		secret = devSecret
	}

	svcLog := logger.Component("service")
	e := api.NewRouter(api.Dependencies{
		Auth:      service.NewAuthService(db, secret, cfg.TokenTTL, svcLog),
		Plays:     service.NewPlayService(db, events, svcLog),
		Actors:    service.NewActorService(db, svcLog),
		Directors: service.NewDirectorService(db, svcLog),
		Showtimes: service.NewShowtimeService(db, events, svcLog),
		Customers: service.NewCustomerService(db, events, svcLog),
		Tickets:   service.NewTicketService(db, events, idem, svcLog),
		Health:    health,
		JWTSecret: secret,
		RateLimit: cfg.HTTP.RateLimit,
		Metrics:   true,
		Log:       logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	db, disconnect, err := mongo.Open(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = disconnect(context.Background())
		return nil, nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	return db, func() {
		if err := disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}, nil
}
