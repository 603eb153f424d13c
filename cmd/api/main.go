package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/mirelhq/campaign-insights/internal/cache"
	"github.com/mirelhq/campaign-insights/internal/config"
	"github.com/mirelhq/campaign-insights/internal/handler"
	"github.com/mirelhq/campaign-insights/internal/infra/postgresql"
	"github.com/mirelhq/campaign-insights/internal/infra/postgresql/migrations"
	infraredis "github.com/mirelhq/campaign-insights/internal/infra/redis"
	"github.com/mirelhq/campaign-insights/internal/observability"
	"github.com/mirelhq/campaign-insights/internal/queue"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/sentiment"
	"github.com/mirelhq/campaign-insights/internal/service"
	"github.com/mirelhq/campaign-insights/internal/transport"
	"github.com/mirelhq/campaign-insights/internal/webhook"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	analytics, err := cache.New(rdb, time.Duration(cfg.CacheTTLSec)*time.Second)
	if err != nil {
		logger.Fatal("analytics cache initialization failed", zap.Error(err))
	}

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RedeliveryRatePerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer mq.Close()

	publisher := queue.NewRabbitMQPublisher(mq)
	consumer := queue.NewRabbitMQConsumer(mq, cfg.IngestPrefetch, logger)

	memberships := repository.NewGormMembershipRepo(db)
	responses := repository.NewGormResponseRepo(db)
	conversions := repository.NewGormConversionRepo(db)
	costs := repository.NewGormCostRepo(db)
	engagements := repository.NewGormEngagementRepo(db)
	settingsRepo := repository.NewGormSettingRepo(db)
	quickbooksRepo := repository.NewGormQuickBooksAuthRepo(db)
	webhooks := repository.NewGormWebhookRepo(db)

	metrics := observability.NewMetrics()

	membershipSvc, err := service.NewMembershipService(memberships, logger)
	if err != nil {
		logger.Fatal("membership service init failed", zap.Error(err))
	}

	settingsSvc, err := service.NewSettingsService(settingsRepo, quickbooksRepo, logger)
	if err != nil {
		logger.Fatal("settings service init failed", zap.Error(err))
	}

	intakeSvc, err := service.NewResponseIntakeService(publisher, logger)
	if err != nil {
		logger.Fatal("response intake service init failed", zap.Error(err))
	}

	analyticsSvc, err := service.NewResponseAnalyticsService(responses, memberships, analytics, logger)
	if err != nil {
		logger.Fatal("response analytics service init failed", zap.Error(err))
	}
	analyticsSvc.SetMetrics(metrics)

	conversionSvc, err := service.NewConversionService(conversions, memberships, analytics, logger)
	if err != nil {
		logger.Fatal("conversion service init failed", zap.Error(err))
	}
	conversionSvc.SetMetrics(metrics)

	roiSvc, err := service.NewROIService(conversions, costs, settingsSvc, analytics, logger)
	if err != nil {
		logger.Fatal("roi service init failed", zap.Error(err))
	}

	engagementSvc, err := service.NewEngagementService(engagements, settingsSvc, logger)
	if err != nil {
		logger.Fatal("engagement service init failed", zap.Error(err))
	}

	recoverySvc, err := service.NewWebhookRecoveryService(webhooks, webhook.NewClient(), rateLimiter, logger)
	if err != nil {
		logger.Fatal("webhook recovery service init failed", zap.Error(err))
	}
	recoverySvc.SetMetrics(metrics)

	ingestWorker, err := service.NewIngestWorker(
		responses, memberships, engagements,
		consumer, sentiment.NewAnalyzer(), analytics,
		cfg.IngestConcurrency, logger,
	)
	if err != nil {
		logger.Fatal("ingest worker init failed", zap.Error(err))
	}
	ingestWorker.SetMetrics(metrics)

	scanner, err := service.NewRedeliveryScanner(
		recoverySvc,
		time.Duration(cfg.RedeliveryIntervalSec)*time.Second,
		cfg.RedeliveryBatch,
		logger,
	)
	if err != nil {
		logger.Fatal("redelivery scanner init failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, sqlDB, rdb)

	for _, register := range []func() error{
		func() error { return handler.RegisterMembershipRoutes(app, membershipSvc) },
		func() error { return handler.RegisterResponseRoutes(app, intakeSvc, analyticsSvc) },
		func() error { return handler.RegisterConversionRoutes(app, conversionSvc) },
		func() error { return handler.RegisterROIRoutes(app, roiSvc) },
		func() error { return handler.RegisterEngagementRoutes(app, engagementSvc) },
		func() error { return handler.RegisterWebhookRoutes(app, recoverySvc) },
		func() error { return handler.RegisterSettingsRoutes(app, settingsSvc) },
	} {
		if err := register(); err != nil {
			logger.Fatal("route registration failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ingestWorker.Start(groupCtx)
	})

	g.Go(func() error {
		return scanner.Start(groupCtx)
	})

	g.Go(func() error {
		logger.Info("campaign-insights api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("api terminated", zap.Error(err))
	}

	logger.Info("campaign-insights api stopped")
}
