package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecofix/backend/go/internal/config"
	"ecofix/backend/go/internal/database/kafka"
	"ecofix/backend/go/internal/database/minio"
	"ecofix/backend/go/internal/database/redis"
	"ecofix/backend/go/internal/database/sqldb"
	"ecofix/backend/go/internal/geocoding"
	"ecofix/backend/go/internal/llm"
	"ecofix/backend/go/internal/tracker_service/api"
	"ecofix/backend/go/internal/tracker_service/service"
	"ecofix/backend/go/internal/tracker_service/store"
	"ecofix/backend/go/pkg/cache"
	"ecofix/backend/go/pkg/circuitbreaker"
	apphttp "ecofix/backend/go/pkg/http"
	"ecofix/backend/go/pkg/httpmiddleware"
	"ecofix/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceName = "tracker_service"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New(serviceName, "", "")
	appLogger.Info("Logger initialized")

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onStateChange := func(name string, from, to circuitbreaker.State) {
		appLogger.WithField("breaker", name).
			WithField("from", from.String()).
			WithField("to", to.String()).
			Warn("circuit breaker state changed")
	}

	// Initialize database connection
	db, err := sqldb.Open(cfg.Databases.SQL)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer sqldb.Close(db)
	if err := sqldb.Migrate(db); err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.WithField("driver", cfg.Databases.SQL.Driver).Info("Database migration completed")

	// Generative model, guarded by its own breaker
	model, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		var cfgErr *llm.ConfigurationError
		if errors.As(err, &cfgErr) {
			appLogger.Fatal("generative model is not configured: " + err.Error())
		}
		appLogger.Fatal(err.Error())
	}
	if cfg.Middleware.CircuitBreaker.Enabled {
		breaker, err := apphttp.NewBreaker("llm:"+cfg.LLM.Provider, cfg.Middleware.CircuitBreaker, onStateChange)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		model = llm.WithBreaker(model, breaker)
	}
	appLogger.WithField("provider", cfg.LLM.Provider).Info("Generative model client ready")

	// /healthz 依次检查已启用的存储组件
	healthChecks := []func(ctx context.Context) error{
		func(ctx context.Context) error { return sqldb.HealthCheck(ctx, db) },
	}

	deps := service.Deps{
		Store: store.NewStore(db),
		Model: model,
		Log:   appLogger,
	}

	// Geocoding
	if cfg.Maps.APIKey == "" {
		appLogger.Warn("maps API key missing, observation submission is disabled")
	} else {
		mapsHTTP, err := apphttp.NewClient("maps", cfg.Middleware.CircuitBreaker, onStateChange)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		google, err := geocoding.NewGoogle(cfg.Maps, mapsHTTP)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		cacheTTL, err := time.ParseDuration(cfg.Maps.CacheTTL)
		if err != nil {
			appLogger.Fatal("invalid maps cache TTL: " + err.Error())
		}
		geocoder, err := geocoding.NewCached(google, cache.Config{Capacity: cfg.Maps.CacheSize, TTL: cacheTTL})
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		deps.Geocoder = geocoder
	}

	// Optional infrastructure
	if cfg.Databases.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Databases.Redis)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		defer rdb.Close()
		deps.Revoker = redis.NewTokenRevoker(rdb)
		healthChecks = append(healthChecks, func(ctx context.Context) error { return redis.HealthCheck(ctx, rdb) })
		appLogger.Info("Redis token revocation enabled")
	} else {
		appLogger.Warn("redis disabled, revoked tokens are tracked in memory")
	}

	if cfg.Databases.MinIO.Enabled {
		mc, err := minio.NewClient(ctx, cfg.Databases.MinIO)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		deps.Photos = minio.NewPhotoStore(mc, cfg.Databases.MinIO.Bucket)
		healthChecks = append(healthChecks, func(ctx context.Context) error { return minio.HealthCheck(ctx, mc) })
		appLogger.WithField("bucket", cfg.Databases.MinIO.Bucket).Info("Photo storage enabled")
	}

	if cfg.Databases.Kafka.Enabled {
		if err := kafka.EnsureTopic(ctx, cfg.Databases.Kafka); err != nil {
			// 事件是尽力而为的，主题创建失败不阻止启动
			appLogger.WithError(logErr(err)).Warn("could not ensure kafka topic")
		}
		publisher := kafka.NewEventPublisher(kafka.NewWriter(cfg.Databases.Kafka))
		defer publisher.Close()
		deps.Events = publisher
		appLogger.WithField("topic", cfg.Databases.Kafka.Topic).Info("Event publishing enabled")
	}

	// Initialize dependencies (Store -> Service -> Handler)
	svc := service.NewService(deps, service.Options{
		JWTSecret:       cfg.Auth.JwtSecret,
		TokenTTL:        time.Duration(cfg.Auth.TokenTTL) * time.Second,
		PageSize:        cfg.Scoring.PageSize,
		ChartWindowDays: cfg.Scoring.ChartWindowDays,
		ChartMaxPoints:  cfg.Scoring.ChartMaxPoints,
	})
	handler := api.NewHandler(svc, appLogger, func(ctx context.Context) error {
		for _, check := range healthChecks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	middlewares := []gin.HandlerFunc{httpmiddleware.RequestLogger(appLogger)}
	if rl := cfg.Middleware.RateLimiter; rl.Enabled {
		middlewares = append(middlewares, httpmiddleware.RateLimit(httpmiddleware.NewLimiter(rl.Rate, rl.Burst)))
	}
	if cfg.Middleware.CircuitBreaker.Enabled {
		// 处理函数持续返回 5xx 时快速失败
		serverBreaker, err := apphttp.NewBreaker("http_server", cfg.Middleware.CircuitBreaker, onStateChange)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		middlewares = append(middlewares, httpmiddleware.CircuitBreak(serverBreaker))
	}
	router := api.SetupRouter(handler, middlewares...)

	shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
	if err != nil {
		appLogger.Fatal("invalid server shutdown timeout: " + err.Error())
	}

	srv := apphttp.NewServer(router,
		apphttp.WithAddress(cfg.Server.Address),
		apphttp.WithShutdownTimeout(shutdownTimeout))
	appLogger.Info("Starting server on " + srv.Addr())
	if err := srv.Run(ctx); err != nil {
		appLogger.WithError(logErr(err)).Error("server stopped with error")
		return
	}
	appLogger.Info("Server stopped")
}
