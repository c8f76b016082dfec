package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocomet/delivery-dispatch/internal/api/handlers"
	"github.com/gocomet/delivery-dispatch/internal/api/routes"
	"github.com/gocomet/delivery-dispatch/internal/config"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/jobs"
	"github.com/gocomet/delivery-dispatch/internal/service/analytics"
	"github.com/gocomet/delivery-dispatch/internal/service/communication"
	"github.com/gocomet/delivery-dispatch/internal/service/directory"
	"github.com/gocomet/delivery-dispatch/internal/service/dispatch"
	"github.com/gocomet/delivery-dispatch/internal/service/lifecycle"
	"github.com/gocomet/delivery-dispatch/internal/store"
	"github.com/gocomet/delivery-dispatch/internal/store/memory"
	"github.com/gocomet/delivery-dispatch/internal/store/postgres"
	"github.com/gocomet/delivery-dispatch/pkg/cache"
	"github.com/gocomet/delivery-dispatch/pkg/database"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/metrics"
	"github.com/gocomet/delivery-dispatch/pkg/monitoring"
	"github.com/gocomet/delivery-dispatch/pkg/websocket"
	gorilla "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const poolStatsInterval = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting GoComet Delivery Dispatch",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
		logger.String("store", cfg.Store.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp = monitoring.Disabled()
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized successfully", logger.String("app_name", cfg.NewRelic.AppName))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	appMetrics := metrics.New()

	// Initialize the store
	st, db, err := openStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to open store", logger.Err(err))
	}
	defer st.Close()
	appLogger.Info("Store ready", logger.String("driver", cfg.Store.Driver))

	// Initialize the dispatch lock
	var (
		locker      dispatch.Locker = cache.NewLocalLocker()
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxRetries:  cfg.Redis.MaxRetries,
			PoolSize:    cfg.Redis.PoolSize,
			MinIdleConn: cfg.Redis.MinIdleConn,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
		}
		defer cache.Close(redisClient)
		locker = cache.NewRedisLocker(redisClient)
		appLogger.Info("Connected to Redis successfully")
	} else {
		appLogger.Warn("Redis disabled, dispatch lock is local to this process")
	}

	if nrApp.IsEnabled() {
		go reportPoolStats(ctx, nrApp, db, redisClient)
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run(ctx)

	// Initialize services
	scores := rider.ScoreRange{Min: cfg.Rating.MinScore, Max: cfg.Rating.MaxScore}
	engine := dispatch.NewEngine(st, locker, appLogger, appMetrics, nrApp, wsHub, dispatch.Config{
		LockKey: cfg.Dispatch.LockKey,
		LockTTL: cfg.Dispatch.LockTTL,
	})

	h := &handlers.Handlers{
		Store:          st,
		Directory:      directory.NewService(st, appLogger, appMetrics, scores),
		Lifecycle:      lifecycle.NewService(st, appLogger, appMetrics, nrApp, wsHub),
		Dispatch:       engine,
		Analytics:      analytics.NewReporter(st),
		Communications: communication.NewService(st, appLogger, appMetrics, wsHub),
		Hub:            wsHub,
		Upgrader: gorilla.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		Logger: appLogger,
	}

	// Scheduled dispatch
	if cfg.Dispatch.AutoDispatch {
		job := jobs.NewDispatchJob(engine, cfg.Dispatch.Schedule, cfg.Dispatch.LockTTL, appLogger)
		if err := job.Start(); err != nil {
			appLogger.Fatal("Failed to start dispatch job", logger.Err(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			job.Stop(stopCtx)
		}()
	}

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	routes.SetupRoutes(router, h, nrApp.Application, appMetrics.Handler())

	appLogger.Info("Routes configured successfully")

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}

// openStore builds the configured store. db is nil for the memory driver.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, *sql.DB, error) {
	if cfg.Store.Driver == config.DriverMemory {
		return memory.New(), nil, nil
	}

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		DBName:      cfg.Database.Name,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConnections,
		MaxIdle:     cfg.Database.MaxIdleConns,
		MaxLifetime: cfg.Database.MaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return postgres.New(db), db, nil
}

func reportPoolStats(ctx context.Context, nrApp *monitoring.NewRelicApp, db *sql.DB, redisClient *redis.Client) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if db != nil {
				nrApp.RecordDatabasePoolStats(database.PoolStats(db))
			}
			if redisClient != nil {
				nrApp.RecordRedisPoolStats(cache.GetClientStats(redisClient))
			}
		}
	}
}
