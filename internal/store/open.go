package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"studentportal/internal/metrics"
)

// Backend is a KV that can report health and be closed.
type Backend interface {
	KV
	Healthy(ctx context.Context) bool
	io.Closer
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	RedisAddr   string
	KeyPrefix   string
	DatabaseURL string
	SQLitePath  string
	// RedisClient is reused instead of dialing RedisAddr when set.
	RedisClient *redis.Client
}

// Open builds the configured backend wrapped with metrics.
func Open(opts Options) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch opts.Backend {
	case "", "memory":
		b = NewMemory()
	case "redis":
		if opts.RedisClient != nil {
			b = NewRedisWithClient(opts.RedisClient, opts.KeyPrefix)
		} else {
			b = NewRedis(opts.RedisAddr, opts.KeyPrefix)
		}
	case "postgres":
		b, err = NewDB(opts.DatabaseURL)
	case "sqlite":
		b, err = NewSQLite(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	name := opts.Backend
	if name == "" {
		name = "memory"
	}
	return Instrument(b, name), nil
}

// Instrumented publishes Prometheus metrics for every call to the wrapped backend.
type Instrumented struct {
	next    Backend
	backend string
}

// Instrument wraps b.
func Instrument(b Backend, name string) *Instrumented {
	return &Instrumented{next: b, backend: name}
}

func (i *Instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := i.next.Get(ctx, key)
	metrics.ObserveStore(i.backend, "get", start, err)
	return v, ok, err
}

func (i *Instrumented) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	metrics.ObserveStore(i.backend, "set", start, err)
	return err
}

func (i *Instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Remove(ctx, key)
	metrics.ObserveStore(i.backend, "remove", start, err)
	return err
}

func (i *Instrumented) Healthy(ctx context.Context) bool { return i.next.Healthy(ctx) }

func (i *Instrumented) Close() error { return i.next.Close() }

// Name returns the backend label.
func (i *Instrumented) Name() string { return i.backend }
