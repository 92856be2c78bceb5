package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/audit"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/messaging"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/mongodb"
	"github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/mysql"
	catalogHTTP "github.com/wyfcoding/storefront/internal/catalog/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
	"github.com/wyfcoding/storefront/pkg/utils"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/catalog/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.Catalog.AdminSecret == "" {
		logger.Warn(ctx, "admin secret is not configured, all product writes will be rejected")
	}

	// 文档存储
	var mongoClient *mongo.Client
	err = utils.RetryWithBackoff(ctx, 5, time.Second, 10*time.Second, func(ctx context.Context) error {
		var connErr error
		mongoClient, connErr = db.ConnectMongo(ctx, db.MongoConfig{
			URI:            cfg.MongoDB.URI,
			ConnectTimeout: time.Duration(cfg.MongoDB.ConnectTimeout) * time.Second,
		})
		if connErr != nil {
			logger.Warn(ctx, "mongodb not ready, retrying", "error", connErr)
		}
		return connErr
	})
	if err != nil {
		logger.Fatal(ctx, "connect mongodb failed", "error", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	coll := mongoClient.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
	if cfg.MongoDB.EnsureIndexes {
		if err := mongodb.EnsureIndexes(ctx, coll); err != nil {
			logger.Warn(ctx, "ensure product indexes failed", "error", err)
		}
	}
	repo := mongodb.NewProductRepository(coll)

	// 鉴权审计
	var recorder domain.AuditRecorder = audit.NewLogRecorder()
	if cfg.Audit.Driver == "mysql" {
		auditDB, err := db.Init(db.Config{
			Driver:             "mysql",
			DSN:                cfg.Audit.DSN,
			MaxOpenConns:       cfg.Audit.MaxOpenConns,
			MaxIdleConns:       cfg.Audit.MaxIdleConns,
			ConnMaxLifetime:    cfg.Audit.ConnMaxLifetime,
			LogEnabled:         cfg.Audit.LogEnabled,
			SlowQueryThreshold: cfg.Audit.SlowQueryThreshold,
		})
		if err != nil {
			logger.Fatal(ctx, "connect audit database failed", "error", err)
		}
		defer func() { _ = auditDB.Close() }()
		if err := auditDB.AutoMigrate(&mysql.AuthAuditRecord{}); err != nil {
			logger.Fatal(ctx, "migrate audit table failed", "error", err)
		}
		recorder = mysql.NewAuditRepository(auditDB.DB)
	}

	// 事件发布
	publisher := messaging.NewLogPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(cfg.Kafka)
		if err != nil {
			logger.Fatal(ctx, "create kafka producer failed", "error", err)
		}
		defer func() { _ = producer.Close() }()
		publisher = messaging.NewKafkaPublisher(producer)
	}

	// 写接口限流
	var limiter ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		redisClient, err := cache.NewClient(cfg.Redis)
		if err != nil {
			logger.Warn(ctx, "redis unavailable, rate limiting disabled", "error", err)
		} else {
			defer func() { _ = redisClient.Close() }()
			limiter = ratelimit.NewRedisRateLimiter(redisClient)
		}
	}

	m := metrics.New(cfg.ServiceName)
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = m.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	app := application.NewCatalogApplicationService(application.Dependencies{
		Repo:      repo,
		Verifier:  domain.NewCredentialVerifier(cfg.Catalog.AdminSecret),
		Audit:     recorder,
		Publisher: publisher,
		Metrics:   m,
	}, application.Options{
		PageSize: domain.PageSizePolicy{
			Default: cfg.Catalog.DefaultPageSize,
			Max:     cfg.Catalog.MaxPageSize,
		},
		StoreTimeout: cfg.Catalog.StoreTimeoutDuration(),
	})

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinLoggingMiddleware(),
		middleware.GinRecoveryMiddleware(),
		middleware.GinCORSMiddleware(),
	)
	handler := catalogHTTP.NewCatalogHandler(app, m, catalogHTTP.HandlerOptions{
		ServiceName: cfg.ServiceName,
		ProtectList: cfg.Catalog.ProtectList,
	})
	handler.RegisterRoutes(router, middleware.RateLimitMiddleware(limiter, cfg.RateLimit))

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "metrics server shutdown failed", "error", err)
		}
	}
}
