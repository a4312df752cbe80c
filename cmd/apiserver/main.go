// Command apiserver serves the pricing HTTP API and the gRPC health service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/config"
	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/storage/minio"
	grpcserver "github.com/turtacn/KeyIP-Pricing/internal/interfaces/grpc"
	httpserver "github.com/turtacn/KeyIP-Pricing/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Pricing/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Pricing/internal/interfaces/http/middleware"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const (
	defaultConfigPath   = "configs/config.yaml"
	grpcHealthInterval  = 10 * time.Second
	startupProbeTimeout = 15 * time.Second
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC server port (overrides config)")
	flag.Parse()

	cfg, watched, err := loadConfig(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.HTTP.Port = *httpPort
	}
	if *grpcPort > 0 {
		cfg.Server.GRPC.Port = *grpcPort
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, watched, logger); err != nil {
		logger.Error("apiserver exited with error", logging.Err(err))
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file, then the YAML config when present, else
// KEYPRICE_* variables alone.  watched is the file to hot reload, if any.
func loadConfig(path, envFile string) (cfg *config.Config, watched string, err error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, "", err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		cfg, err = config.Load(path)
		return cfg, path, err
	}
	cfg, err = config.LoadFromEnv()
	return cfg, "", err
}

// instanceID tags this process's rule notices so its own consumer skips them.
func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "apiserver"
	}
	return host + "-" + uuid.New().String()[:8]
}

// closer is run in reverse registration order at shutdown.
type closer struct {
	name string
	fn   func() error
}

func run(ctx context.Context, cfg *config.Config, watched string, logger logging.Logger) error {
	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].fn(); err != nil {
				logger.Warn("close failed", logging.String("component", closers[i].name), logging.Err(err))
			}
		}
	}()

	source := instanceID()
	logger.Info("starting pricing API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("build_date", buildDate),
		logging.String("instance", source))

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		Subsystem:            cfg.Metrics.Subsystem,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics collector: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	// Rule store.
	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return err
	}
	closers = append(closers, closer{"postgres", conn.Close})
	if cfg.Database.AutoMigrate {
		if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
			return err
		}
	}
	checkers := []handlers.HealthChecker{postgresChecker(conn)}

	var repo domain.RuleRepository = repositories.NewPostgresRuleRepo(conn, logger, metrics)
	var invalidator apppricing.RuleCacheInvalidator

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			// rule reads fall through to postgres
			logger.Warn("redis unavailable, rule cache disabled", logging.Err(err))
		} else {
			closers = append(closers, closer{"redis", rc.Close})
			cached := redis.NewCachedRuleRepository(repo,
				redis.NewRedisCache(rc, logger),
				redis.NewLockFactory(rc, logger),
				cfg.Pricing.RuleCacheTTL, metrics, logger)
			repo, invalidator = cached, cached
			checkers = append(checkers, redisChecker(rc))
		}
	}

	engine := apppricing.NewEngine(logger, metrics)
	priceCache := apppricing.NewMemoryPriceCache(cfg.Pricing.CacheMaxEntries)
	aggregator := apppricing.NewPreviewAggregator(engine, priceCache,
		apppricing.WithDefaultFerKey(domain.FerKey(cfg.Pricing.DefaultFerKey)))

	// Validate guarantees minio is enabled whenever snapshots are.
	var snapshots apppricing.SnapshotStore
	if cfg.Pricing.SnapshotQuotes {
		sctx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
		mc, err := minio.NewClient(sctx, cfg.MinIO, logger)
		cancel()
		if err != nil {
			return err
		}
		closers = append(closers, closer{"minio", mc.Close})
		snapshots = minio.NewSnapshotStore(mc, metrics, logger)
		checkers = append(checkers, minioChecker(mc))
	}

	var (
		publisher apppricing.RuleEventPublisher
		producer  *kafka.Producer
	)
	if cfg.Kafka.Enabled {
		tctx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
		ensureTopics(tctx, cfg.Kafka, logger)
		cancel()

		producer, err = kafka.NewProducer(kafka.ProducerConfigFromKafka(cfg.Kafka), logger, metrics)
		if err != nil {
			return err
		}
		closers = append(closers, closer{"kafka producer", producer.Close})
		publisher = kafka.NewRulesPublisher(producer, cfg.Kafka.RulesTopic, source)
	}

	ruleSvc := apppricing.NewRuleService(apppricing.RuleServiceDeps{
		Repo:       repo,
		Cache:      invalidator,
		Publisher:  publisher,
		Aggregator: aggregator,
		Metrics:    metrics,
		Logger:     logger,
	})
	quoteSvc := apppricing.NewQuoteService(repo, engine, aggregator, snapshots, logger)

	if producer != nil {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfigFromKafka(cfg.Kafka), logger, metrics, producer)
		if err != nil {
			return err
		}
		consumer.Subscribe(cfg.Kafka.RulesTopic, kafka.NewRulesUpdatedHandler(ruleSvc, source, logger))
		if err := consumer.Start(ctx); err != nil {
			_ = consumer.Close()
			return err
		}
		closers = append(closers, closer{"kafka consumer", consumer.Close})
	}

	routerCfg := httpserver.RouterConfig{
		QuoteHandler:  handlers.NewQuoteHandler(quoteSvc, logger),
		RuleHandler:   handlers.NewRuleHandler(ruleSvc, logger),
		HealthHandler: handlers.NewHealthHandler(version, checkers...).WithObserver(healthGauge(metrics)),
		APIKeyAuth:    middleware.NewAPIKeyAuth(cfg.Server.HTTP.APIKeys, logger),
		CORS:          middleware.CORS(cfg.Server.HTTP.CORS),
		RateLimiter:   middleware.NewRateLimiter(cfg.Server.HTTP.RateLimit, logger),
		Logger:        logger,
		Metrics:       metrics,
		MetricsPath:   cfg.Metrics.Path,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsCollector = collector
	}
	if routerCfg.APIKeyAuth == nil {
		logger.Warn("no API keys configured; rule writes are unauthenticated")
	}

	httpSrv := httpserver.NewServer(cfg.Server.HTTP, httpserver.NewRouter(routerCfg), logger)
	errCh := make(chan error, 2)
	go func() {
		logger.Info("http server listening", logging.String("address", httpSrv.Addr()))
		errCh <- httpSrv.Start()
	}()

	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPC.Enabled {
		grpcSrv, err = grpcserver.NewServer(cfg.Server.HTTP.Host, cfg.Server.GRPC, grpcserver.WithLogger(logger))
		if err != nil {
			return err
		}
		go func() { errCh <- grpcSrv.Start() }()
		go grpcSrv.MonitorHealth(ctx, grpcHealthInterval, allHealthy(checkers))
	}

	if watched != "" {
		config.Watch(watched, func(next *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
			}
			priceCache.SetMaxEntries(next.Pricing.CacheMaxEntries)
			logger.Info("configuration reloaded",
				logging.String("log_level", next.Log.Level),
				logging.Int("cache_max_entries", next.Pricing.CacheMaxEntries))
		}, func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("server failed", logging.Err(runErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", logging.Err(err))
	}
	if grpcSrv != nil {
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error("grpc server shutdown error", logging.Err(err))
		}
	}
	logger.Info("servers stopped")
	return runErr
}

// ensureTopics creates the rule and dead-letter topics.  Failure is not fatal:
// brokers with auto-create enabled or pre-provisioned topics still work.
func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	if err := tm.EnsureTopics(ctx, kafka.PricingTopics(cfg.RulesTopic, kafka.DefaultDeadLetterTopic)); err != nil {
		logger.Warn("failed to ensure kafka topics", logging.Err(err))
	}
}

//Personal.AI order the ending
