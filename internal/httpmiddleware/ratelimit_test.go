package httpmiddleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewTokenBucket(2, 60)
	l.now = func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "a"); !ok {
			t.Fatalf("request %d rejected", i)
		}
	}
	if ok, _ := l.Allow(ctx, "a"); ok {
		t.Fatal("request past capacity allowed")
	}
	if ok, _ := l.Allow(ctx, "b"); !ok {
		t.Fatal("other key affected")
	}

	clock = clock.Add(time.Second)
	if ok, _ := l.Allow(ctx, "a"); !ok {
		t.Fatal("refill not applied")
	}
}

func TestRedisWindow(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	l := NewRedisWindow(client, "portal:", 3)

	for i := 0; i < 3; i++ {
		if ok, err := l.Allow(ctx, "10.0.0.1"); err != nil || !ok {
			t.Fatalf("request %d = %v, %v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatal("fourth request allowed")
	}
	if ttl := mr.TTL("portal:ratelimit:10.0.0.1"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("window ttl = %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatal("new window still limited")
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) { return false, errors.New("down") }

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	serve := func(l Limiter) int {
		r := gin.New()
		r.Use(Middleware(l, logger))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	l := NewTokenBucket(1, 1)
	if code := serve(l); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := serve(l); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", code)
	}
	if code := serve(brokenLimiter{}); code != http.StatusOK {
		t.Errorf("limiter error should fail open, got %d", code)
	}
}
