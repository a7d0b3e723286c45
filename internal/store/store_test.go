package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
	}

	if err := kv.Set(ctx, KeyLoggedIn, "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := kv.Get(ctx, KeyLoggedIn)
	if err != nil || !ok || v != "true" {
		t.Fatalf("Get() = %q, %v, %v; want \"true\", true, nil", v, ok, err)
	}

	if err := kv.Set(ctx, KeyLoggedIn, "false"); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}
	if v, _, _ := kv.Get(ctx, KeyLoggedIn); v != "false" {
		t.Errorf("after overwrite Get() = %q, want \"false\"", v)
	}

	if err := kv.Remove(ctx, KeyLoggedIn); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := kv.Get(ctx, KeyLoggedIn); ok {
		t.Error("key still present after Remove()")
	}
	if err := kv.Remove(ctx, KeyLoggedIn); err != nil {
		t.Errorf("Remove() of absent key error = %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer db.Close()
	exerciseKV(t, db)
	if !db.Healthy(context.Background()) {
		t.Error("sqlite store not healthy")
	}
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := NewDB(url)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	defer db.Close()
	exerciseKV(t, db)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisWithClient(client, "test:")
	defer r.Close()

	exerciseKV(t, r)

	if err := r.Set(context.Background(), KeyEmail, "a@b.co"); err != nil {
		t.Fatal(err)
	}
	got, err := mr.Get("test:" + KeyEmail)
	if err != nil || got != "a@b.co" {
		t.Errorf("raw redis value = %q, %v; want prefixed key", got, err)
	}
}

func TestRedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	r := NewRedis(mr.Addr(), "")
	if !r.Healthy(context.Background()) {
		t.Fatal("expected healthy redis")
	}
	mr.Close()
	if r.Healthy(context.Background()) {
		t.Error("expected unhealthy redis after close")
	}
	if _, _, err := r.Get(context.Background(), "x"); err == nil {
		t.Error("Get() against closed redis should fail")
	}
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	var dst map[string]string
	found, err := GetJSON(ctx, kv, KeyBiodata, &dst)
	if found || err != nil {
		t.Fatalf("absent key: found %v, err %v", found, err)
	}

	if err := SetJSON(ctx, kv, KeyBiodata, map[string]string{"fullName": "Ali"}); err != nil {
		t.Fatal(err)
	}
	found, err = GetJSON(ctx, kv, KeyBiodata, &dst)
	if !found || err != nil || dst["fullName"] != "Ali" {
		t.Fatalf("GetJSON() = %v, %v, %v", found, err, dst)
	}

	_ = kv.Set(ctx, KeyBiodata, "{not json")
	found, err = GetJSON(ctx, kv, KeyBiodata, &dst)
	if !found || !errors.Is(err, ErrMalformed) {
		t.Errorf("malformed value: found %v, err %v; want ErrMalformed", found, err)
	}
}

func TestOpen(t *testing.T) {
	b, err := Open(Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	defer b.Close()
	exerciseKV(t, b)

	if _, err := Open(Options{Backend: "etcd"}); err == nil {
		t.Error("Open(etcd) should fail")
	}

	b, err = Open(Options{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	defer b.Close()
	if inst, ok := b.(*Instrumented); !ok || inst.Name() != "sqlite" {
		t.Errorf("Open() did not instrument backend: %T", b)
	}
}

func TestOpenSharedRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b, err := Open(Options{Backend: "redis", KeyPrefix: "portal:", RedisClient: client})
	if err != nil {
		t.Fatalf("Open(redis) error = %v", err)
	}
	defer b.Close()

	if err := b.Set(context.Background(), KeyEmail, "a@b.co"); err != nil {
		t.Fatal(err)
	}
	if got, _ := mr.Get("portal:" + KeyEmail); got != "a@b.co" {
		t.Errorf("shared client wrote %q", got)
	}
}
