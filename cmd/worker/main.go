package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"studentportal/internal/config"
	"studentportal/internal/notify"
	"studentportal/internal/queue"
	"studentportal/internal/store"
)

// Worker drains the notification list that the API fills when
// NOTIFY_BACKEND=redis and writes each entry to the log.
func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	rdb := store.NewRedis(cfg.RedisAddr, cfg.KeyPrefix)
	defer rdb.Close()
	if !rdb.Healthy(ctx) {
		logger.Warn("redis not reachable yet, consumer will keep retrying", "addr", cfg.RedisAddr)
	}

	q := queue.NewRedisQueue(rdb.Client, cfg.QueueKey)
	pending, _ := q.Pending(ctx)
	logger.Info("worker started, waiting for notifications", "key", cfg.QueueKey, "pending", pending)
	if err := notify.Dispatch(ctx, q, notify.NewLog(logger), logger); err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}
	logger.Info("worker stopped")
}
