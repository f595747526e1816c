// Package cache holds stored OPS responses for the caching middleware.
package cache

import (
	"context"
	"errors"
	"time"
)

// Backends selectable through configuration.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

var ErrUnknownBackend = errors.New("unknown cache backend")

// Entry is one stored response.
type Entry struct {
	StatusCode  int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store persists entries with a time to live. A miss is (Entry{}, false, nil).
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Close() error
}

// Open returns the store for backend. path is used by sqlite, url by redis.
func Open(ctx context.Context, backend, path, url string) (Store, error) {
	switch backend {
	case "", BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		r, err := NewRedis(ctx, url)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, ErrUnknownBackend
	}
}
