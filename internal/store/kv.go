package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the portal. They match the names the browser client used so
// blobs written by either side stay readable.
const (
	KeyLoggedIn = "isLoggedIn"
	KeyEmail    = "userEmail"
	KeyBiodata  = "studentBiodata"
	KeyCourses  = "studentCourses"
)

// ErrMalformed is returned by GetJSON when a stored value does not parse.
var ErrMalformed = errors.New("malformed stored value")

// KV is the storage port every backend implements. Writes are synchronous;
// concurrent writers get last-writer-wins.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// GetJSON reads key and decodes it into dst. found is false when the key is
// absent. A value that does not decode yields ErrMalformed with found true.
func GetJSON(ctx context.Context, kv KV, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(b))
}
