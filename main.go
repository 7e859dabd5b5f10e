package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"time-tracker-backend/internal/config"
	"time-tracker-backend/internal/events"
	"time-tracker-backend/internal/logger"
	"time-tracker-backend/internal/middleware"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Run database migrations and seed default categories")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo time entries for the current week (idempotent)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	slog.SetDefault(logg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgxConfig, err := connConfig(cfg)
	if err != nil {
		fatal(logg, "Invalid database configuration", err)
	}

	if *migrateCmd {
		if err := runMigrations(pgxConfig); err != nil {
			fatal(logg, "Migration failed", err)
		}
		db, err := openDB(ctx, pgxConfig, cfg, logg)
		if err != nil {
			fatal(logg, "Failed to initialize database", err)
		}
		defer db.Close()
		n, err := seedDefaultCategories(ctx, db)
		if err != nil {
			fatal(logg, "Seeding categories failed", err)
		}
		logg.Info("Migration completed successfully", "categories_seeded", n)
		return
	}

	db, err := openDB(ctx, pgxConfig, cfg, logg)
	if err != nil {
		fatal(logg, "Failed to initialize database", err)
	}
	defer db.Close()

	if *seedDemoCmd {
		if err := seedDemoData(ctx, db); err != nil {
			fatal(logg, "Seeding demo data failed", err)
		}
		logg.Info("Demo data seeded")
		return
	}

	if err := runMigrations(pgxConfig); err != nil {
		fatal(logg, "Failed to apply migrations", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logg.Warn("Failed to initialize Redis, continuing without cache", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logg)
		if err != nil {
			logg.Warn("Failed to connect to AMQP broker, events disabled", "error", err)
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := NewServer(newPostgresStore(db), newTotalsCache(redisClient, cfg.CacheTTL, logg), publisher, logg)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(server, cfg.CORSAllowedOrigins, logg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logg.Info("Shutdown signal received")
	case err := <-errCh:
		logg.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Warn("Graceful shutdown failed", "error", err)
	}
	logg.Info("Server stopped")
}

// newRouter builds the gin engine with logging, metrics, recovery and CORS
// middleware around the API routes.
func newRouter(s *Server, allowedOrigins []string, logg *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logg))
	r.Use(middleware.Metrics())
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.registerRoutes(r)

	return r
}

func fatal(logg *slog.Logger, msg string, err error) {
	logg.Error(msg, "error", err)
	os.Exit(1)
}
