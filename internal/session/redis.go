package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flixsy/backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps sessions in Redis with the sliding inactivity TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(host, port, password string) (*RedisStore, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Log.Info("Redis session store connected",
		zap.String("address", client.Options().Addr),
	)

	return &RedisStore{client: client}, nil
}

// Client exposes the underlying connection so other components, like the
// rate limiter, can share the pool.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection gracefully.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func sessionKey(token string) string {
	return "session:" + token
}

// Create stores a fresh session under a new opaque token.
func (s *RedisStore) Create(ctx context.Context, userID uint) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		Token:      newToken(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get fetches the session and slides its expiry window.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}

	sess.LastSeenAt = time.Now().UTC()
	if err := s.save(ctx, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// EnsureCSRF returns the session's CSRF token, generating one on first use.
func (s *RedisStore) EnsureCSRF(ctx context.Context, token string) (string, error) {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if sess.CSRFToken != "" {
		return sess.CSRFToken, nil
	}
	sess.CSRFToken = newToken()
	if err := s.save(ctx, sess); err != nil {
		return "", err
	}
	return sess.CSRFToken, nil
}

// Destroy removes the session immediately.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *RedisStore) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.Token), data, InactivityTimeout).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
