package layers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robbertj85/parkeerplaatsen/internal/core/observability"
)

type RedisOption func(*redis.Options)

func WithDialTimeout(d time.Duration) RedisOption {
	return func(o *redis.Options) { o.DialTimeout = d }
}

func WithReadTimeout(d time.Duration) RedisOption {
	return func(o *redis.Options) { o.ReadTimeout = d }
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to redis and verifies the connection with a ping.
// Layer documents are written without expiry: once loaded they stay for the
// life of the deployment, mirroring the memory store's no-eviction
// contract.
func NewRedisStore(ctx context.Context, addr string, opts ...RedisOption) (Store, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     32,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	observability.ObserveLayerStoreOp("ping", err, time.Since(start).Seconds())
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{rdb: rdb}, nil
}

func (s *redisStore) Get(ctx context.Context, city string) ([]byte, bool, error) {
	start := time.Now()
	val, err := s.rdb.Get(ctx, layerKey(city)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveLayerStoreOp("get", nil, time.Since(start).Seconds())
		return nil, false, nil
	}
	observability.ObserveLayerStoreOp("get", err, time.Since(start).Seconds())
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %q: %w", layerKey(city), err)
	}
	return val, true, nil
}

func (s *redisStore) Put(ctx context.Context, city string, doc []byte) error {
	start := time.Now()
	err := s.rdb.Set(ctx, layerKey(city), doc, 0).Err()
	observability.ObserveLayerStoreOp("set", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("redis SET %q: %w", layerKey(city), err)
	}
	return nil
}

func (s *redisStore) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

func layerKey(city string) string { return "layer:" + city }
