package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"studentportal/internal/auth"
	"studentportal/internal/config"
	"studentportal/internal/handler"
	"studentportal/internal/httpmiddleware"
	"studentportal/internal/metrics"
	"studentportal/internal/notify"
	"studentportal/internal/photo"
	"studentportal/internal/queue"
	"studentportal/internal/store"
	"studentportal/internal/student"
	"studentportal/internal/validation"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rdb *redis.Client
	if cfg.StoreBackend == "redis" || cfg.NotifyBackend == "redis" {
		rdb = store.NewRedis(cfg.RedisAddr, cfg.KeyPrefix).Client
	}

	kv, err := store.Open(store.Options{
		Backend:     cfg.StoreBackend,
		RedisAddr:   cfg.RedisAddr,
		KeyPrefix:   cfg.KeyPrefix,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		RedisClient: rdb,
	})
	if err != nil {
		return err
	}
	defer kv.Close()
	logger.Info("store opened", "backend", cfg.StoreBackend)

	var notifier notify.Notifier
	switch cfg.NotifyBackend {
	case "redis":
		// cmd/worker drains the list.
		notifier = notify.NewQueued(queue.NewRedisQueue(rdb, cfg.QueueKey), logger)
	case "memory":
		q := queue.NewInMemory(64)
		notifier = notify.NewQueued(q, logger)
		go func() {
			if err := notify.Dispatch(ctx, q, notify.NewLog(logger), logger); err != nil {
				logger.Error("notification dispatch stopped", "error", err)
			}
		}()
	case "none":
		notifier = notify.Discard{}
	default:
		notifier = notify.NewLog(logger)
	}

	guard := auth.NewGuard(kv, cfg.JWTIssuer, cfg.JWTSigningKey)
	if !guard.TokensEnabled() {
		logger.Warn("JWT_SIGNING_KEY not set, session tokens disabled")
	}
	v := validation.New()
	encoder := photo.NewEncoder(cfg.PhotoMaxDim, cfg.PhotoMaxBytes)
	biodata := student.NewBiodataService(kv, v, guard, encoder, notifier, logger)
	courses := student.NewCourseService(kv, v, notifier, logger)

	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if rdb != nil {
		limiter = httpmiddleware.NewRedisWindow(rdb, cfg.KeyPrefix, cfg.RateLimitPerMin)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.CORS(cfg.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders(cfg.CookieSecure))
	r.Use(metrics.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		healthy := kv.Healthy(c.Request.Context())
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "store": healthy})
	})

	opts := handler.Options{
		Institution:     cfg.Institution,
		CardCourseLimit: cfg.CardCourseLimit,
		CookieSecure:    cfg.CookieSecure,
		MaxUpload:       cfg.PhotoMaxBytes,
	}
	handler.New(guard, biodata, courses, opts, logger).
		Register(r, httpmiddleware.Middleware(limiter, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", "error", err)
	}
	logger.Info("server exited")
	return nil
}
