package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/nakamauwu/backchannel/errs"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 30 * 24 * time.Hour
)

// ErrSessionNotFound is returned for unknown, expired or revoked tokens.
var ErrSessionNotFound = errs.NewUnauthenticatedError("session not found or expired")

var ErrSessionExpired = errs.NewInvalidArgumentError("ExpiresAt", "session already expired")

type session struct {
	UserID    string    `msgpack:"u"`
	CreatedAt time.Time `msgpack:"c"`
}

// RedisSessions maps opaque bearer tokens to internal user IDs.
// Tokens are never stored, only their SHA-256 hash.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// DialRedisSessions parses the URL and checks the connection.
func DialRedisSessions(ctx context.Context, redisURL string) (*RedisSessions, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisSessions(client), nil
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

// Save stores a session for token until expiresAt.
// A zero expiresAt falls back to 30 days. A past one stores nothing,
// drops any previous session of token and returns [ErrSessionExpired].
func (s *RedisSessions) Save(ctx context.Context, token, userID string, expiresAt time.Time) error {
	ttl := defaultSessionTTL
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
	}

	if ttl <= 0 {
		if err := s.Revoke(ctx, token); err != nil {
			return err
		}
		return ErrSessionExpired
	}

	b, err := msgpack.Marshal(session{
		UserID:    userID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("msgpack marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(token), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}

	return nil
}

// Resolve returns the user ID behind token.
func (s *RedisSessions) Resolve(ctx context.Context, token string) (string, error) {
	b, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}

	if err != nil {
		return "", fmt.Errorf("redis get session: %w", err)
	}

	var sess session
	if err := msgpack.Unmarshal(b, &sess); err != nil {
		return "", fmt.Errorf("msgpack unmarshal session: %w", err)
	}

	return sess.UserID, nil
}

// Revoke drops the session of token. Unknown tokens are not an error.
func (s *RedisSessions) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis revoke session: %w", err)
	}
	return nil
}

func (s *RedisSessions) Close() error {
	return s.client.Close()
}
