package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyticsapp "github.com/storefront/analytics/internal/application/analytics"
	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/infrastructure/cache"
	"github.com/storefront/analytics/internal/infrastructure/config"
	"github.com/storefront/analytics/internal/infrastructure/logger"
	"github.com/storefront/analytics/internal/infrastructure/migration"
	"github.com/storefront/analytics/internal/infrastructure/persistence"
	"github.com/storefront/analytics/internal/infrastructure/persistence/document"
	"github.com/storefront/analytics/internal/infrastructure/telemetry"
	"github.com/storefront/analytics/internal/interfaces/http/handler"
	"github.com/storefront/analytics/internal/interfaces/http/middleware"
	"github.com/storefront/analytics/internal/interfaces/http/router"
	"github.com/storefront/analytics/migrations"
)

//	@title			Storefront Analytics API
//	@version		1.0
//	@description	Dashboard, sales, financial, vendor and export reports over the storefront order store.

//	@host		localhost:8080
//	@BasePath	/api

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}

	logsCfg := otelCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, logger.ParseLevel(cfg.Telemetry.LogsLevel))
	defer func() { _ = log.Sync() }()

	log.Info("Starting storefront analytics",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Config:         withEnabled(otelCfg, cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled),
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileTypes:      cfg.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open analytics store", zap.Error(err))
	}
	log.Info("Analytics store connected", zap.String("driver", cfg.Store.Driver))

	cacheOpts := []cache.FactoryOption{cache.WithLogger(log)}
	if cfg.Redis.Enabled {
		cacheOpts = append(cacheOpts, cache.WithRedis(cache.RedisConfig{
			Addr:      cfg.Redis.Addr(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}))
	}
	metricsCache, err := cache.NewFactory(cacheOpts...).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create metrics cache", zap.Error(err))
	}

	opts := []analyticsapp.Option{}
	if cfg.Cache.Enabled {
		opts = append(opts, analyticsapp.WithCache(metricsCache, cfg.Cache.DashboardTTL, cfg.Cache.ReportTTL))
	}
	if recorder, err := telemetry.NewAnalyticsMetrics(meterProvider.Meter("analytics")); err != nil {
		log.Warn("Analytics metrics unavailable", zap.Error(err))
	} else {
		opts = append(opts, analyticsapp.WithRecorder(recorder))
	}
	service := analyticsapp.NewService(store.repo, calibrationFrom(cfg), log, opts...)

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	engine := newEngine(limiterCtx, cfg, log, meterProvider, service, metricsCache)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopLimiter()

	if err := metricsCache.Close(); err != nil {
		log.Warn("Error closing metrics cache", zap.Error(err))
	}
	if err := store.close(shutdownCtx); err != nil {
		log.Warn("Error closing analytics store", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracing", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Warn("Error shutting down log export", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func withEnabled(c telemetry.Config, enabled bool) telemetry.Config {
	c.Enabled = enabled
	return c
}

// analyticsStore is the selected aggregation engine and its teardown
type analyticsStore struct {
	repo  analytics.Repository
	close func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*analyticsStore, error) {
	loc := cfg.App.Location()

	switch cfg.Store.Driver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
		defer cancel()
		client, err := document.Connect(connectCtx, document.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			MaxPoolSize:    cfg.Mongo.MaxPoolSize,
			MinPoolSize:    cfg.Mongo.MinPoolSize,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			Monitor:        logger.NewMongoMonitor(log.Named("mongo"), cfg.Store.SlowQuery),
		})
		if err != nil {
			return nil, err
		}
		if cfg.Store.AutoMigrate {
			m, err := migration.NewMongo(client.Mongo(), cfg.Mongo.Database, migrations.Mongo(), log)
			if err != nil {
				_ = client.Close(ctx)
				return nil, err
			}
			// The migrator shares the client, so it is not closed here.
			if err := m.Up(); err != nil {
				_ = client.Close(ctx)
				return nil, fmt.Errorf("auto-migrate mongo: %w", err)
			}
		}
		return &analyticsStore{
			repo:  document.NewAnalyticsRepository(client.Database(), document.WithLocation(loc)),
			close: client.Close,
		}, nil

	case config.DriverPostgres:
		gormLog := logger.NewGormLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Log.Level), cfg.Store.SlowQuery)
		db, err := persistence.NewDatabaseWithLogger(ctx, &cfg.Database, gormLog)
		if err != nil {
			return nil, err
		}
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			IncludeVars:     cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		}, log); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
		if cfg.Store.AutoMigrate {
			sqlDB, err := db.DB.DB()
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			m, err := migration.NewPostgres(sqlDB, migrations.Postgres(), log)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			if err := m.Up(); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("auto-migrate postgres: %w", err)
			}
		}
		return &analyticsStore{
			repo:  persistence.NewGormAnalyticsRepository(db.DB, loc),
			close: func(context.Context) error { return db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// calibrationFrom maps the analytics config section onto the service calibration
func calibrationFrom(cfg *config.Config) analyticsapp.Calibration {
	a := cfg.Analytics
	return analyticsapp.Calibration{
		Weights: analyticsapp.ScoreWeights{
			Revenue:        a.WeightRevenue,
			Orders:         a.WeightOrders,
			AvgOrderValue:  a.WeightAvgOrderValue,
			ActiveProducts: a.WeightActiveProducts,
		},
		Divisors: analyticsapp.ScoreDivisors{
			Revenue:        a.DivisorRevenue,
			Orders:         a.DivisorOrders,
			AvgOrderValue:  a.DivisorAvgOrderValue,
			ActiveProducts: a.DivisorActiveProducts,
		},
		Profit: analyticsapp.ProfitRatios{
			Cost:   a.CostRatio,
			Profit: a.ProfitRatio,
		},
		TopSellersLimit:      a.TopSellersLimit,
		TopProductsLimit:     a.TopProductsLimit,
		TopCustomersLimit:    a.TopCustomersLimit,
		ActiveCustomerWindow: time.Duration(a.ActiveCustomerWindowDay) * 24 * time.Hour,
		StrictRanges:         a.StrictRanges,
		Location:             cfg.App.Location(),
	}
}

func newEngine(
	limiterCtx context.Context,
	cfg *config.Config,
	log *zap.Logger,
	meterProvider *telemetry.MeterProvider,
	service *analyticsapp.Service,
	metricsCache cache.MetricsCache,
) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
			SkipPaths:   []string{"/health", "/health/live"},
		}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(meterProvider.Meter("http.server")),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:          cfg.Profiling.Enabled,
			SkipPaths:        []string{"/health", "/health/live"},
			SkipPathPrefixes: []string{"/swagger"},
		}),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	apiMiddleware := []gin.HandlerFunc{middleware.Timeout(cfg.Store.RequestTimeout)}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(limiterCtx)
		apiMiddleware = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, apiMiddleware...)
	}

	router.NewRouter(engine).
		Register(router.AnalyticsRoutes(handler.NewAnalyticsHandler(service, cfg.App.Location()), apiMiddleware...)).
		Setup()
	router.RegisterHealth(engine, handler.NewHealthHandler(map[string]handler.Pinger{
		"store": service,
		"cache": metricsCache,
	}, 2*time.Second))

	return engine
}
