package app

import (
	"context"
	"errors"
	"fmt"

	"umkmorder/internal/config"
	"umkmorder/internal/entity"
	"umkmorder/internal/lifecycle"
	"umkmorder/internal/notify"
	"umkmorder/internal/pricing"
	"umkmorder/internal/repository"
	"umkmorder/internal/service"
	httpt "umkmorder/internal/transport/http"
	kafkat "umkmorder/internal/transport/kafka"
	"umkmorder/pkg/cache"
	"umkmorder/pkg/kafka"
	"umkmorder/pkg/kafka/dlq"
	"umkmorder/pkg/logger"
	"umkmorder/pkg/metric"
	"umkmorder/pkg/storage/dynamodb"
	"umkmorder/pkg/storage/postgres"
	"umkmorder/pkg/storage/postgres/transaction"
	"umkmorder/pkg/storage/redis"

	"golang.org/x/sync/errgroup"
)

const _redisKeyPrefix = "umkm:"

func Run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	metrics := initMetrics(ctx, eg, &cfg.Metrics, log)

	store, closeStore, err := initStore(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}
	defer closeStore()

	orderCache, err := initCache(&cfg.Cache, log, metrics)
	if err != nil {
		return err
	}
	defer stopCache(orderCache)

	orderService := initOrderService(cfg, store, orderCache, log, metrics)

	if err = orderService.WarmCache(ctx); err != nil {
		log.Errorw("failed to warm cache from store", "error", err)
	}

	initHTTPServer(ctx, eg, cfg, orderService, log, metrics)

	if cfg.Kafka.Enabled {
		closeKafka, kafkaErr := initKafkaComponents(ctx, eg, cfg, orderService, log, metrics)
		if kafkaErr != nil {
			return kafkaErr
		}
		defer closeKafka()
	}

	eg.Go(func() error {
		return orderService.RunSweeper(ctx, cfg.Order.SweepInterval)
	})

	return waitForShutdown(eg)
}

func initMetrics(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Metrics,
	log logger.Logger,
) metric.Factory {
	metrics := metric.NewFactory()

	metricsServer := httpt.NewHTTPServer(metrics.Handler(), &config.HTTP{
		Host:              cfg.Host,
		Port:              cfg.Port,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.WriteTimeout,
	}, log.With("component", "metrics server"))

	eg.Go(func() error {
		return metricsServer.Start(ctx)
	})

	return metrics
}

// initStore opens the document store selected by cfg.Store.Driver. The
// returned func releases its connections.
func initStore(
	ctx context.Context,
	cfg *config.Config,
	log logger.Logger,
	metrics metric.Factory,
) (repository.DocumentStore, func(), error) {
	const op = "app.initStore"

	log.Infow("initializing document store", "driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := initDatabase(ctx, &cfg.Postgres, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.Migrate {
			if err = postgres.Migrate(ctx, &cfg.Postgres, log.With("component", "migrate")); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		txManager, err := initTransactionManager(db, &cfg.Postgres, log, metrics)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(db, txManager), func() { closeDB(db) }, nil

	case config.DriverRedis:
		client, err := redis.NewClient(ctx, &cfg.Redis, log.With("component", "redis"))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return repository.NewRedisStore(client, _redisKeyPrefix), func() {
			if closeErr := client.Close(); closeErr != nil {
				log.Errorw("failed to close redis client", "error", closeErr)
			}
		}, nil

	case config.DriverDynamoDB:
		client, err := dynamodb.NewClient(ctx, &cfg.Dynamo)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return repository.NewDynamoStore(client, cfg.Dynamo.Table), func() {}, nil

	default:
		log.Warnw("using in-memory store, orders are lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

func initDatabase(ctx context.Context, cfg *config.Postgres, log logger.Logger) (*postgres.Postgres, error) {
	db, err := postgres.NewPostgres(
		ctx,
		cfg,
		log.With("component", "database"),
		postgres.MaxPoolSize(cfg.PoolMax),
		postgres.MaxConnAttempts(cfg.ConnAttempts),
		postgres.BaseRetryDelay(cfg.BaseRetryDelay),
		postgres.MaxRetryDelay(cfg.MaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initDatabase: %w", err)
	}
	return db, nil
}

func closeDB(db *postgres.Postgres) {
	if db != nil {
		db.Close()
	}
}

func initTransactionManager(
	db *postgres.Postgres,
	cfg *config.Postgres,
	log logger.Logger,
	metrics metric.Factory,
) (transaction.Manager, error) {
	txManager, err := transaction.NewManager(
		db,
		log.With("component", "transaction manager"),
		metrics.Transaction(),
		transaction.MaxAttempts(cfg.TxAttempts),
		transaction.BaseRetryDelay(cfg.BaseRetryDelay),
		transaction.MaxRetryDelay(cfg.MaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initTransactionManager: %w", err)
	}
	return txManager, nil
}

func initCache(
	cfg *config.Cache,
	log logger.Logger,
	metrics metric.Factory,
) (cache.Cache[string, *entity.Order], error) {
	orderCache, err := cache.NewLRUCache[string, *entity.Order](
		"orders",
		cfg.Capacity,
		log.With("component", "cache"),
		metrics.Cache(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initCache: %w", err)
	}
	orderCache.StartCleanup(cfg.CleanupInterval)
	return orderCache, nil
}

func stopCache(orderCache cache.Cache[string, *entity.Order]) {
	if orderCache != nil {
		orderCache.StopCleanup()
	}
}

func initOrderService(
	cfg *config.Config,
	store repository.DocumentStore,
	orderCache cache.Cache[string, *entity.Order],
	log logger.Logger,
	metrics metric.Factory,
) *service.OrderService {
	engine := lifecycle.NewEngine(
		lifecycle.WithStrictTransitions(cfg.Order.StrictTransitions),
		lifecycle.WithPaymentWindow(cfg.Order.PaymentWindow),
	)

	return service.NewOrderService(
		repository.NewOrderRepository(store, cfg.Store.Key),
		engine,
		pricing.NewCatalog(cfg.Order.Packages),
		notify.NewFormatter(cfg.Notify.Templates),
		log.With("component", "order service"),
		orderCache,
		service.CacheTTL(cfg.Cache.TTL),
		service.CachedReads(cfg.Store.Driver == config.DriverMemory),
		service.Metrics(metrics.Order()),
		service.Location(cfg.Location()),
		service.CutoffDay(cfg.Order.CutoffDay),
		service.WindowMonths(cfg.Order.WindowMonths),
		service.IDPrefix(cfg.Order.IDPrefix),
		service.FallbackPhone(cfg.Notify.FallbackPhone),
	)
}

func initHTTPServer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Config,
	orderService *service.OrderService,
	log logger.Logger,
	metrics metric.Factory,
) {
	handler := httpt.NewOrderHandler(
		orderService,
		log.With("component", "http"),
		metrics.HTTP(),
		httpt.RequestTimeout(cfg.HTTP.RequestTimeout),
		httpt.AdminUsers(cfg.Admin.Users, cfg.Admin.Realm),
	)

	httpServer := httpt.NewHTTPServer(
		handler.Engine(),
		&cfg.HTTP,
		log.With("component", "http server"),
	)

	eg.Go(func() error {
		return httpServer.Start(ctx)
	})
}

// initKafkaComponents starts the intake consumer and the DLQ processor. The
// returned func closes the DLQ writer.
func initKafkaComponents(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Config,
	orderService *service.OrderService,
	log logger.Logger,
	metrics metric.Factory,
) (func(), error) {
	intakeReader, err := kafka.NewReader(ctx, kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}, log.With("component", "kafka reader"))
	if err != nil {
		return nil, fmt.Errorf("app.initKafkaComponents: intake reader creation: %w", err)
	}

	dlqReader, err := kafka.NewReader(ctx, kafka.ReaderConfig{
		Brokers: cfg.DLQ.Brokers,
		Topic:   cfg.DLQ.Topic,
		GroupID: cfg.DLQ.GroupID,
	}, log.With("component", "dlq reader"))
	if err != nil {
		_ = intakeReader.Close()
		return nil, fmt.Errorf("app.initKafkaComponents: dlq reader creation: %w", err)
	}

	deadLetterQueue, err := dlq.NewDLQ(cfg.DLQ, log.With("component", "dlq"), metrics.DLQ(),
		dlq.BaseRetryDelay(cfg.DLQ.RetryDelay),
	)
	if err != nil {
		_ = intakeReader.Close()
		_ = dlqReader.Close()
		return nil, fmt.Errorf("app.initKafkaComponents: dead letter queue creation: %w", err)
	}

	consumer := kafkat.NewSubmissionConsumer(
		intakeReader,
		deadLetterQueue,
		orderService,
		metrics.Kafka(),
		log.With("component", "submission consumer"),
	)
	eg.Go(func() error {
		return consumer.Start(ctx)
	})

	dlqProcessor := kafkat.NewDLQProcessor(
		dlqReader,
		deadLetterQueue,
		orderService,
		cfg.DLQ.MaxRetryCount,
		cfg.DLQ.RetryDelay,
		log.With("component", "dlq processor"),
	)
	eg.Go(func() error {
		return dlqProcessor.Start(ctx)
	})

	return func() {
		if closeErr := deadLetterQueue.Close(); closeErr != nil {
			log.Errorw("failed to close dlq writer", "error", closeErr)
		}
	}, nil
}

func waitForShutdown(eg *errgroup.Group) error {
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("app.waitForShutdown: application failed: %w", err)
	}
	return nil
}
