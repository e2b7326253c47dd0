package main

import (
	"context"
	"expvar"
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/churchconnect/realtime/internal/infrastructure/bus"
	"github.com/churchconnect/realtime/internal/infrastructure/configs"
	"github.com/churchconnect/realtime/internal/infrastructure/events"
	"github.com/churchconnect/realtime/internal/infrastructure/identity"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/messaging"
	"github.com/churchconnect/realtime/internal/infrastructure/metrics"
	"github.com/churchconnect/realtime/internal/infrastructure/ratelimiter"
	"github.com/churchconnect/realtime/internal/infrastructure/tracing"
	"github.com/churchconnect/realtime/internal/infrastructure/worker"
	"github.com/churchconnect/realtime/internal/persistence/db"
	"github.com/churchconnect/realtime/internal/persistence/repository"
	"github.com/churchconnect/realtime/internal/presentation/api"
	"github.com/churchconnect/realtime/internal/presentation/handler/health"
	"github.com/churchconnect/realtime/internal/presentation/handler/realtime"
	"github.com/churchconnect/realtime/internal/rooms"
)

const (
	serviceName = "realtime-gateway"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	configFlag := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := configs.Load(configs.DetermineConfigPath(*configFlag))
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})

	m := metrics.New()

	mongoCfg := db.NewMongoConfig(cfg.Mongo.URI, cfg.Mongo.Database)

	mongoCtx, mongoCancel := context.WithTimeout(ctx, 10*time.Second)
	mongoClient, err := db.NewMongoClient(mongoCtx, mongoCfg)
	mongoCancel()
	if err != nil {
		logger.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()

		if err := db.DisconnectMongo(disconnectCtx, mongoClient); err != nil {
			logger.Errorf("failed to disconnect from mongodb: %v", err)
		}
	}()

	store := repository.NewStore(db.GetDatabase(mongoClient, mongoCfg), m)

	pool := worker.NewPool(cfg.Workers.PoolSize, cfg.Workers.QueueDepth, logger)
	defer pool.Close()

	fanout := bus.New(logger, m)
	defer fanout.Close()

	if cfg.RabbitMQ.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitmq.Close()

		fanout.AttachBroker(rabbitmq)

		roomConsumer := events.NewRoomConsumer(rabbitmq, fanout, logger)
		go func() {
			if err := roomConsumer.Listen(ctx); err != nil {
				logger.Errorf("room consumer stopped: %v", err)
			}
		}()

		logger.Info(logging.RabbitMQ, logging.Startup, "cross-instance fanout enabled", nil)
	}

	handlers := rooms.Handlers{
		Notifications: rooms.NewNotificationsHandler(store, pool, logger),
		Chat:          rooms.NewChatHandler(store, pool, fanout, logger),
		Event:         rooms.NewEventHandler(store, pool, logger),
	}

	authorizer := rooms.NewAuthorizer(store, pool, logger, cfg.Rooms.OpenEventStreams)
	provider := identity.NewJWTProvider(cfg.JWT.Secret, cfg.JWT.Issuer)

	gateway := realtime.NewHandler(provider, authorizer, handlers, fanout, m, logger, cfg.Rooms.SendBuffer)
	healthHandler := health.NewHandler(fanout.ActiveConnections)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, gateway, healthHandler, logger, rl, m)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
