// Package auth issues and resolves the anonymous staff sessions that gate
// access to the ledger.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSession means the token is unknown, expired or revoked.
var ErrNoSession = errors.New("no active session")

// Session is an authenticated identity for one logged-in client.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Manager stores session tokens in Redis with a TTL.
type Manager struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

func NewManager(rdb *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *Manager {
	return &Manager{rdb: rdb, ttl: ttl, log: log}
}

func sessionKey(token string) string { return "session:" + token }

// Create mints a fresh anonymous identity and its bearer token.
func (m *Manager) Create(ctx context.Context) (Session, error) {
	s := Session{Token: uuid.NewString(), UserID: uuid.NewString()}
	if err := m.rdb.Set(ctx, sessionKey(s.Token), s.UserID, m.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	m.log.Infow("session created", "user", s.UserID)
	return s, nil
}

// Identity resolves a bearer token to its user id.
func (m *Manager) Identity(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	uid, err := m.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return uid, nil
}

// Revoke logs the session out. Revoking an unknown token is not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if err := m.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
