package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appmenu "github.com/littlelemon/menu/internal/application/menu"
	"github.com/littlelemon/menu/internal/infrastructure/cache"
	"github.com/littlelemon/menu/internal/infrastructure/config"
	"github.com/littlelemon/menu/internal/infrastructure/event"
	"github.com/littlelemon/menu/internal/infrastructure/logger"
	"github.com/littlelemon/menu/internal/infrastructure/migration"
	"github.com/littlelemon/menu/internal/infrastructure/persistence"
	"github.com/littlelemon/menu/internal/infrastructure/remote"
	"github.com/littlelemon/menu/internal/infrastructure/telemetry"
	"github.com/littlelemon/menu/internal/interfaces/http/handler"
	"github.com/littlelemon/menu/internal/interfaces/http/middleware"
	"github.com/littlelemon/menu/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Little Lemon Menu API
//	@version		1.0
//	@description	Menu catalog: items, first-launch seeding and the live filtered list.

//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Telemetry: traces, logs and continuous profiling, all off unless telemetry.enabled
	tp, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log = telemetry.BridgeLogger(log, telemetry.ZapBridgeConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Provider:    lp.Provider(),
		Level:       level,
	})

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	log.Info("Starting Little Lemon menu",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("addr", cfg.HTTP.Addr()),
		zap.String("database", cfg.Database.Driver),
	)

	// GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBSystem:   cfg.Database.Driver,
	}, tp.Provider(), log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := migrate(db, cfg.Database.Driver, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database ready")

	// Storage and live feed
	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	repo := persistence.NewGormMenuItemRepository(db.DB, bus, log.Named("menu_repository"))

	// First-launch seeding
	guard, err := cache.NewSeedGuardFactory(cfg.Redis, cache.WithLogger(log)).CreateGuard()
	if err != nil {
		log.Fatal("Failed to create seed guard", zap.Error(err))
	}
	defer func() {
		if err := guard.Close(); err != nil {
			log.Warn("Error closing seed guard", zap.Error(err))
		}
	}()

	seeder := appmenu.NewSeeder(repo, remote.NewMenuClient(cfg.Remote, log),
		appmenu.WithSeedGuard(guard, cfg.Seed.LockTTL),
		appmenu.WithSeederLogger(log),
	)
	if cfg.Seed.Enabled {
		seeder.Start(rootCtx)
	}

	service := appmenu.NewMenuService(repo)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = cfg.Telemetry.Enabled
	tracingCfg.TracerProvider = tp.Provider()
	engine.Use(middleware.TracingWithConfig(tracingCfg), middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.AllowOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	stream := handler.NewMenuStreamHandler(repo,
		handler.WithStreamLogger(log),
		handler.WithStreamHeartbeat(cfg.Stream.Heartbeat),
		handler.WithStreamMaxClients(cfg.Stream.MaxClients),
	)
	health := handler.NewHealthHandler(db, handler.WithLiveStats(func() handler.LiveStats {
		return handler.LiveStats{
			StreamClients:   stream.ClientCount(),
			FeedSubscribers: repo.SubscriberCount(),
			BusHandlers:     bus.HandlerCount(),
		}
	}))

	router.NewRouter(engine).
		Register(handler.MenuRoutes(handler.NewMenuHandler(service, seeder), stream)).
		RegisterPage(handler.PageRoutes(handler.NewMenuPageHandler(service), stream, health)).
		RegisterPage(handler.SwaggerRoutes(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		})).
		Setup()

	srv := &http.Server{
		Addr:           cfg.HTTP.Addr(),
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Live streams hold their connections open; end them before Shutdown waits
	cancelRoot()
	stream.Stop()
	repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(ctx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrate brings the schema to the latest embedded version
func migrate(db *persistence.Database, driver string, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, driver, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
