// Package cache stores rendered JSON pages in Redis. A nil *Pages, or one
// built without a client, is a valid cache that never hits.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 5 * time.Minute

	ProductPrefix  = "page:product:"
	ListingPrefix  = "page:products:"
	CategoryPrefix = "page:categories"
)

type Pages struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Pages {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Pages{rdb: rdb, ttl: ttl}
}

// Connect parses url and pings the server. On any failure it logs and returns
// a disabled cache so the service keeps running without one.
func Connect(ctx context.Context, url string, logger *slog.Logger) *Pages {
	if url == "" {
		logger.Info("redis not configured, running without cache")
		return New(nil, DefaultTTL)
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("redis url invalid, running without cache", "error", err)
		return New(nil, DefaultTTL)
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, running without cache", "error", err)
		_ = rdb.Close()
		return New(nil, DefaultTTL)
	}
	logger.Info("redis connected")
	return New(rdb, DefaultTTL)
}

func (p *Pages) Enabled() bool {
	return p != nil && p.rdb != nil
}

func (p *Pages) Get(ctx context.Context, key string) ([]byte, bool) {
	if !p.Enabled() {
		return nil, false
	}
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Default().Warn("cache_get_error", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}

func (p *Pages) Set(ctx context.Context, key string, value []byte) {
	if !p.Enabled() {
		return
	}
	if err := p.rdb.Set(ctx, key, value, p.ttl).Err(); err != nil {
		slog.Default().Warn("cache_set_error", "key", key, "error", err)
	}
}

// Invalidate deletes every key starting with one of the prefixes.
func (p *Pages) Invalidate(ctx context.Context, prefixes ...string) error {
	if !p.Enabled() {
		return nil
	}
	var errs []error
	for _, prefix := range prefixes {
		iter := p.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := p.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := iter.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InvalidateStock drops every page that renders stock or cart state.
func (p *Pages) InvalidateStock(ctx context.Context) error {
	return p.Invalidate(ctx, ProductPrefix, ListingPrefix, CategoryPrefix)
}

func (p *Pages) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.rdb.Close()
}
