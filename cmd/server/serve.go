package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"relay/pkg/broker"
	"relay/pkg/bus"
	"relay/pkg/cache"
	"relay/pkg/config"
	"relay/pkg/database"
	"relay/pkg/handlers"
	"relay/pkg/hub"
	"relay/pkg/logging"
	"relay/pkg/repository"
	"relay/pkg/schedule"
	"relay/pkg/server"
	"relay/pkg/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook ingress and the realtime socket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		redisCache  *cache.Redis
		statusCache services.Cache
	)
	if cfg.Redis.URL != "" {
		redisCache, err = cache.New(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		statusCache = redisCache
		logger.Info("redis connected")
	}

	eventBus := bus.New()
	queue := schedule.NewQueue()
	defer queue.Stop()

	wsHub := hub.New(queue, cfg.BroadcastStep(), logger)
	eventBus.SubscribeWebhookEvent(wsHub)

	sink, err := openSink(cfg, redisCache)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
		eventBus.SubscribeWebhookEvent(broker.NewForwarder(sink, logger))
		logger.Info("event sink enabled", zap.String("driver", cfg.Sink.Driver))
	}

	listCache := services.NewStatusListCache(statusCache)
	app := server.NewApp("relay", cfg.Server.CORSOrigins)
	server.Routes{
		Webhook:  handlers.NewWebhook(services.NewWebhookService(repo, eventBus, listCache, cfg.Relay.SentinelAuthor, logger)),
		Statuses: handlers.NewStatuses(services.NewStatusService(repo, listCache, logger)),
		Hub:      wsHub,
	}.Register(app)

	addr := "0.0.0.0:" + cfg.Server.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("store", cfg.Store.Driver))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	wsHub.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.StatusRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		db, err := database.OpenMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("mongo connected", zap.String("database", cfg.Store.MongoDatabase))
		closeFn := func() {
			if err := database.CloseMongo(db); err != nil {
				logger.Warn("close mongo", zap.Error(err))
			}
		}
		return repository.NewMongoStatusRepository(db, cfg.Store.Collection, logger), closeFn, nil

	case config.StorePostgres:
		db, err := database.ConnectPostgres(cfg.Store.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("postgres connected")
		return repository.NewPostgresStatusRepository(db), func() { db.Close() }, nil

	default:
		logger.Warn("using in-memory status store; records are lost on restart")
		return repository.NewMemoryStatusRepository(), func() {}, nil
	}
}

func openSink(cfg config.Config, redisCache *cache.Redis) (broker.Sink, error) {
	switch cfg.Sink.Driver {
	case config.SinkRedis:
		return broker.NewRedisSink(redisCache.Client()), nil
	case config.SinkNATS:
		sink, err := broker.NewNATSSink(cfg.Sink.NATSURL)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.SinkAMQP:
		sink, err := broker.NewAMQPSink(cfg.Sink.AMQPURL)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, nil
	}
}

