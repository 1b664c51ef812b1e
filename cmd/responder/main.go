// cmd/responder/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	awsclient "messenger-responder/internal/common/aws"
	"messenger-responder/internal/common/config"
	"messenger-responder/internal/common/database"
	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/observability"

	ao "messenger-responder/internal/responder/alert-operator"
	is "messenger-responder/internal/responder/intent-store"
	mw "messenger-responder/internal/responder/messenger-webhook"
	ri "messenger-responder/internal/responder/record-interaction"
	ra "messenger-responder/internal/responder/resolve-answer"
	sm "messenger-responder/internal/responder/send-message"
	"messenger-responder/pkg/intenttable"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// waitForPing retries only the ping of an already built client, so failed
// attempts do not leave connection pools behind.
func waitForPing(ctx context.Context, p database.Pinger, maxRetries int, initialDelay time.Duration, log *zap.Logger) error {
	return retryWithBackoff(func() error {
		return p.Ping(ctx)
	}, maxRetries, initialDelay, log, p.Name()+" connection")
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting messenger responder...",
		zap.String("environment", cfg.App.Environment),
		zap.String("store", cfg.Store.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	var checks []database.Pinger

	// --- Intent store ---
	store, storeChecks, closeStore, err := buildStore(ctx, cfg, log, zapLog)
	if err != nil {
		zapLog.Fatal("intent store init failed", zap.Error(err))
	}
	defer closeStore()
	checks = append(checks, storeChecks...)

	// --- Read-through cache ---
	if cfg.Cache.Enabled {
		redis, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis client init failed", zap.Error(err))
		}
		if err := waitForPing(ctx, redis, 10, 2*time.Second, zapLog); err != nil {
			redis.Close()
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")

		store = is.NewCachedStore(store, redis.Client, config.GetDuration(cfg.Cache.TTL), cfg.Cache.Prefix, log)
		checks = append(checks, redis)
	}

	resolver := ra.NewResolver(store, ra.LoadConfig(cfg), log)
	sender := sm.NewSender(sm.LoadConfig(cfg), nil, log)

	// --- Operator alerts ---
	alertAWS := awsclient.ClientOptions{Region: cfg.Alerts.Region, Endpoint: cfg.Alerts.Endpoint}
	var snsClient ao.SNSService
	var sesClient ao.SESService
	if cfg.Alerts.SNS.Enabled {
		c, err := awsclient.NewSNSClient(ctx, alertAWS)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		snsClient = c
	}
	if cfg.Alerts.SES.Enabled {
		c, err := awsclient.NewSESClient(ctx, alertAWS)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		sesClient = c
	}
	alerter := ao.NewAlerter(ao.LoadConfig(cfg), snsClient, sesClient, log)

	// --- Interaction audit ---
	var recorder *ri.Recorder
	if cfg.Audit.Enabled {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			zapLog.Fatal("elasticsearch client init failed", zap.Error(err))
		}
		if err := waitForPing(ctx, esClient, 15, 2*time.Second, zapLog); err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		recorder = ri.NewRecorder(ri.LoadConfig(cfg), esClient.Client, log)
		checks = append(checks, esClient)
	}

	opts := mw.HandlerOptions{
		Config:        mw.LoadConfig(cfg),
		Resolver:      resolver,
		Sender:        sender,
		Alerter:       alerter,
		Observability: obs,
		Logger:        log,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	webhook := mw.NewHandler(opts)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:          config.GetDuration(cfg.Server.WriteTimeout),
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          apperrors.NewErrorHandler(log).Handle,
	})
	app.Use(recover.New())
	webhook.Register(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/ready", func(c *fiber.Ctx) error {
		checkCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := database.CheckAll(checkCtx, checks...); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	go func() {
		zapLog.Info("Webhook server listening", zap.String("address", cfg.Server.Address))
		if err := app.Listen(cfg.Server.Address); err != nil {
			zapLog.Error("Webhook server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Shutdown(); err != nil {
		zapLog.Error("Error stopping webhook server", zap.Error(err))
	}
	if recorder != nil {
		if err := recorder.Close(shutdownCtx); err != nil {
			zapLog.Error("Error draining audit recorder", zap.Error(err))
		}
	}

	zapLog.Info("Messenger responder stopped gracefully")
}

// buildStore opens the configured intent table backend wrapped with lookup metrics.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (is.IntentStore, []database.Pinger, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendDynamoDB:
		client, err := awsclient.NewDynamoDBClient(ctx, awsclient.ClientOptions{
			Region:   cfg.Store.Region,
			Endpoint: cfg.Store.Endpoint,
		})
		if err != nil {
			return nil, nil, noop, err
		}
		zapLog.Info("DynamoDB intent table configured", zap.String("table", cfg.Store.Table))
		store := is.NewDynamoDBStore(client, cfg.Store.Table, cfg.Store.PartitionKey, log)
		return is.NewInstrumentedStore(store, is.BackendDynamoDB), nil, noop, nil

	case config.BackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := waitForPing(ctx, pg, 15, 2*time.Second, zapLog); err != nil {
			pg.Close()
			return nil, nil, noop, err
		}
		zapLog.Info("PostgreSQL connected successfully")
		store := is.NewPostgresStore(pg.DB, log)
		return is.NewInstrumentedStore(store, is.BackendPostgres), []database.Pinger{pg}, func() { pg.Close() }, nil

	case config.BackendFile:
		records, err := intenttable.LoadRecords(cfg.Store.File)
		if err != nil {
			return nil, nil, noop, err
		}
		store := is.NewMemoryStore(records)
		zapLog.Info("Intent table loaded", zap.String("file", cfg.Store.File), zap.Int("intents", store.Len()))
		return is.NewInstrumentedStore(store, is.BackendFile), nil, noop, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
