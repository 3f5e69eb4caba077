// Package redis stores dialogue records in Redis and provides a Redis-backed lock for save slots.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/serialization"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store and the locker.
const DefaultPrefix = "dialoguetree:history:"

// Store implements ports.HistoryStore using Redis.
type Store struct {
	client     *backend.Client
	prefix     string
	ttl        time.Duration
	serializer *serialization.Serializer
}

type Option func(*Store)

// WithTTL sets the expiration for save slots.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for save slots.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithSerializer sets the value encoding. The default is MessagePack with zstd.
func WithSerializer(ser *serialization.Serializer) Option {
	return func(s *Store) {
		s.serializer = ser
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:     client,
		prefix:     DefaultPrefix,
		serializer: serialization.Default(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client returns the underlying client, e.g. to build a Locker sharing the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(slotID string) string {
	return s.prefix + slotID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the records and indexes the slot.
func (s *Store) Save(ctx context.Context, slotID string, h domain.Histories) error {
	data, err := s.serializer.Serialize(h)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	pipe := s.client.Pipeline()

	// 0 means no expiration.
	pipe.Set(ctx, s.key(slotID), data, s.ttl)

	// Index score is the expiry time, so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: slotID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the records of a slot.
func (s *Store) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	val, err := s.client.Get(ctx, s.key(slotID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var h domain.Histories
	if err := s.serializer.Deserialize(val, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	if h == nil {
		h = domain.Histories{}
	}
	return h, nil
}

// Delete removes the slot.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(slotID))
	pipe.ZRem(ctx, s.indexKey(), slotID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the live slots, pruning expired entries from the index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired slots: %w", err)
	}

	slots, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
