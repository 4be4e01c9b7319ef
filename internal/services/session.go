package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"homehelper-backend/internal/models"
)

const sessionTTL = 24 * time.Hour

// SessionStore keeps per-browser session records in Redis, keyed by the
// opaque token the session middleware puts in a cookie. Handlers load a
// session before calling the chat service and save it afterwards, so every
// read-modify-write cycle is explicit.
type SessionStore struct {
	redis        *redis.Client
	defaultModel string
}

func NewSessionStore(redisClient *redis.Client, defaultModel string) *SessionStore {
	return &SessionStore{redis: redisClient, defaultModel: defaultModel}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Load fetches the session for token, or returns a fresh one with the
// default model selected when none exists yet.
func (s *SessionStore) Load(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return &models.Session{CurrentModel: s.defaultModel}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess := &models.Session{}
	if err := json.Unmarshal([]byte(data), sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.CurrentModel == "" {
		sess.CurrentModel = s.defaultModel
	}
	return sess, nil
}

// Save writes the session back and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, token string, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKey(token), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
