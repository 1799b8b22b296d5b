// Package redisstore keeps the student snapshot in a single Redis key.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Store implements storage.Storage on top of a Redis string value.
type Store struct {
	client *redis.Client
	key    string
}

// New connects to Redis and pings it so a bad address fails at startup.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore.New: ping %s: %w", opts.Addr, err)
	}

	return NewWithClient(client, opts.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, key string) *Store {
	if key == "" {
		key = storage.DefaultKey
	}
	return &Store{client: client, key: key}
}

// Load returns the snapshot; redis.Nil (no such key) is an empty list.
func (s *Store) Load(ctx context.Context) ([]types.Student, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return make([]types.Student, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore.Load: %w", err)
	}
	return storage.Decode(data)
}

// Save overwrites the key with the encoded snapshot. No TTL: the
// snapshot is the system of record, not a cache entry.
func (s *Store) Save(ctx context.Context, students []types.Student) error {
	data, err := storage.Encode(students)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redisstore.Save: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
