package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"alertdesk.app/intake/common/id"
	"alertdesk.app/intake/common/logger"
	"alertdesk.app/intake/common/otel"
	"alertdesk.app/intake/core/config"
	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/dedup"
	"alertdesk.app/intake/internal/http/dto"
	"alertdesk.app/intake/internal/http/middleware"
	httprouter "alertdesk.app/intake/internal/http/router"
	"alertdesk.app/intake/internal/metrics"
	"alertdesk.app/intake/internal/queue"
	"alertdesk.app/intake/internal/service"
	"alertdesk.app/intake/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "alert intake starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	var (
		events queue.Producer = queue.NewNoopProducer()
		guard                 = dedup.Disabled()
	)
	if cfg.Intake.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Intake.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Intake.TicketStream)

		events = queue.NewRedisProducer(redisClient, cfg.Intake.TicketStream, slog.Default())
		if cfg.Intake.DedupEnabled() {
			guard = dedup.NewRedisGuard(redisClient, cfg.Intake.DedupWindow)
			slog.InfoContext(ctx, "alert deduplication enabled", "window", cfg.Intake.DedupWindow)
		}
	} else {
		slog.InfoContext(ctx, "redis not configured, ticket events and deduplication disabled")
	}
	defer events.Close()

	if err := dto.RegisterValidators(); err != nil {
		slog.ErrorContext(ctx, "failed to register validators", "error", err)
		os.Exit(1)
	}

	recorder := metrics.New()
	services := service.NewServices(service.ServicesConfig{
		Stores:     store.NewStores(database.Conn()),
		TxRunner:   service.NewTxRunner(database),
		SystemUser: cfg.SystemUser,
		Events:     events,
		Dedup:      guard,
		Metrics:    recorder,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, recorder)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, recorder *metrics.Intake) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger("/health", "/metrics"))

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, configuration API disabled")
	}

	httprouter.SetupRoutes(router, services, recorder, httprouter.RouterConfig{
		PublicBaseURL:  cfg.PublicBaseURL,
		AdminAPIKey:    cfg.AdminAPIKey,
		MaxBodyBytes:   cfg.Intake.MaxBodyBytes,
		MetricsHandler: recorder.Handler(),
	})

	return router
}

const banner = `
   _   _           _     ___       _        _        
  /_\ | | ___ _ __| |_  |_ _|_ __ | |_ __ _| | _____ 
 //_\\| |/ _ \ '__| __|  | || '_ \| __/ _' | |/ / _ \
/  _  \ |  __/ |  | |_   | || | | | || (_| |   <  __/
\_/ \_/_|\___|_|   \__| |___|_| |_|\__\__,_|_|\_\___|
`
