package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arkive/internal/domain/models"
)

// RedisStore keeps the session as JSON in one Redis key, for hosts where
// several machines share a login
type RedisStore struct {
	client *redis.Client
	prefix string
	name   string
}

// NewRedisStore creates a new Redis-backed session store.
// name distinguishes sessions of different local accounts.
func NewRedisStore(redisURL, name string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, name), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, name string) *RedisStore {
	if name == "" {
		name = "default"
	}
	return &RedisStore{
		client: client,
		prefix: "arkive:session:",
		name:   name,
	}
}

// key generates the Redis key for this store's session
func (s *RedisStore) key() string {
	return s.prefix + s.name
}

// Load reads the session
func (s *RedisStore) Load(ctx context.Context) (*models.Session, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Save stores the session. The key expires with the bearer token when the
// token carries an expiry.
func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	stored := *sess
	stored.User = sess.User.Sanitized()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var ttl time.Duration
	if info, err := ParseToken(sess.Token); err == nil && info.ExpiresAt != nil {
		ttl = time.Until(*info.ExpiresAt)
		if ttl <= 0 {
			// Already expired; store briefly so the next request reports it
			ttl = time.Minute
		}
	}

	if err := s.client.Set(ctx, s.key(), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear deletes the session
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
