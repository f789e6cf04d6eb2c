// Package redisstore keeps checkpoints in Redis, one string value per key.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/redis/go-redis/v9"
)

var _ checkpoint.Store = (*Store)(nil)

const defaultPrefix = "kreader:"

type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

type Option func(*Store)

func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

// WithTTL expires checkpoints that have not been updated for d. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, keyPrefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to addr and pings it before returning.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		},
	)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return New(client, opts...), nil
}

func (s *Store) key(key string) string {
	return s.keyPrefix + key
}

func (s *Store) Get(ctx context.Context, key string) (kafka.OffsetTable, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get checkpoint %s: %w", key, err)
	}

	table, err := checkpoint.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("get checkpoint %s: %w", key, err)
	}
	return table, true, nil
}

func (s *Store) Put(ctx context.Context, key string, table kafka.OffsetTable) error {
	data, err := checkpoint.Encode(table)
	if err != nil {
		return fmt.Errorf("put checkpoint %s: %w", key, err)
	}

	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("put checkpoint %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
