// Package redis provides a Redis-backed daily quota gate, so several
// server instances can share per-user recognition counts.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/logger"
)

// Ensure QuotaGate implements the interface.
var _ driven.QuotaGate = (*QuotaGate)(nil)

// Default configuration values.
const (
	DefaultAddress   = "localhost:6379"
	DefaultKeyPrefix = "artid:quota:"

	// keyTTL outlives the UTC day a counter belongs to.
	keyTTL = 48 * time.Hour
)

// Options holds configuration for the Redis quota gate.
type Options struct {
	// URL is a redis:// or rediss:// URI, or a plain host:port address.
	URL string

	// KeyPrefix namespaces the counter keys (default: artid:quota:).
	KeyPrefix string

	// DailyLimit is the number of recognitions allowed per user per UTC day.
	// Zero or less disables the gate.
	DailyLimit int
}

// QuotaGate counts recognitions per user per UTC day in Redis.
type QuotaGate struct {
	client *redis.Client
	prefix string
	limit  int
	now    func() time.Time
}

// NewQuotaGate connects to Redis and verifies the connection with PING.
func NewQuotaGate(ctx context.Context, opts Options) (*QuotaGate, error) {
	clientOpts, err := clientOptions(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}

	client := redis.NewClient(clientOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", clientOpts.Addr, err)
	}
	logger.Debug("redis quota gate connected to %s", clientOpts.Addr)

	return &QuotaGate{
		client: client,
		prefix: opts.KeyPrefix,
		limit:  opts.DailyLimit,
		now:    time.Now,
	}, nil
}

func clientOptions(raw string) (*redis.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &redis.Options{Addr: DefaultAddress}, nil
	}
	if strings.Contains(raw, "://") {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: redis url: %w", domain.ErrInvalidInput, err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: raw}, nil
}

// Check returns domain.ErrQuotaExceeded when the user's count is at the limit.
func (q *QuotaGate) Check(ctx context.Context, userID string) error {
	if q.limit <= 0 {
		return nil
	}
	count, err := q.client.Get(ctx, q.key(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading quota: %w", err)
	}
	if count >= q.limit {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Increment records one recognition for the user today.
func (q *QuotaGate) Increment(ctx context.Context, userID string) error {
	key := q.key(userID)
	_, err := q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, keyTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("incrementing quota: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (q *QuotaGate) Close() error {
	return q.client.Close()
}

func (q *QuotaGate) key(userID string) string {
	return q.prefix + q.now().UTC().Format(time.DateOnly) + ":" + userID
}
