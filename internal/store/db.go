package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS portal_kv (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// DB stores portal keys in a single SQL table. The same queries serve
// Postgres (pgx) and SQLite (modernc); only the placeholders differ.
type DB struct {
	Client *sql.DB
	driver string
	get    string
	set    string
	remove string
}

// NewDB creates a Postgres-backed store with sane pool defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return openDB(db, "pgx")
}

// NewSQLite opens (or creates) a SQLite file database.
func NewSQLite(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	// single writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)
	return openDB(db, "sqlite")
}

func openDB(db *sql.DB, driver string) (*DB, error) {
	d := &DB{Client: db, driver: driver}
	if driver == "pgx" {
		d.get = `SELECT value FROM portal_kv WHERE name = $1`
		d.set = `INSERT INTO portal_kv (name, value, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`
		d.remove = `DELETE FROM portal_kv WHERE name = $1`
	} else {
		d.get = `SELECT value FROM portal_kv WHERE name = ?`
		d.set = `INSERT INTO portal_kv (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
		d.remove = `DELETE FROM portal_kv WHERE name = ?`
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}
	return d, nil
}

func (d *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := d.Client.QueryRowContext(ctx, d.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (d *DB) Set(ctx context.Context, key, value string) error {
	_, err := d.Client.ExecContext(ctx, d.set, key, value)
	return err
}

func (d *DB) Remove(ctx context.Context, key string) error {
	_, err := d.Client.ExecContext(ctx, d.remove, key)
	return err
}

// Healthy pings the database.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
