// Package redis provides a read-through session cache in front of another
// persistence backend. Active conversations are chatty, one read and one
// write per turn, so the hot session lives in Redis and the backing store
// stays the source of truth.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/intelogroup/clixen/pkg/models"
	"github.com/intelogroup/clixen/pkg/persistence"
)

const defaultSessionTTL = 30 * time.Minute

// SessionCache wraps a persistence backend with a Redis read-through cache
// for session lookups. Workflow operations pass straight through.
type SessionCache struct {
	persistence.Persistence

	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionCache connects to Redis at the given URL and wraps the backend.
func NewSessionCache(ctx context.Context, logger *slog.Logger, redisURL string, backend persistence.Persistence) (*SessionCache, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &SessionCache{
		Persistence: backend,
		client:      client,
		ttl:         defaultSessionTTL,
		logger:      logger,
	}, nil
}

func sessionKey(id string) string {
	return "clixen:session:" + id
}

// SaveSession writes through to the backend first, then refreshes the cache.
// A cache write failure is logged and swallowed, the backend already holds
// the truth.
func (c *SessionCache) SaveSession(ctx context.Context, session *models.ConversationSession) error {
	if err := c.Persistence.SaveSession(ctx, session); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	if err := c.client.Set(ctx, sessionKey(session.ID), data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to cache session", "session_id", session.ID, "error", err)
	}

	return nil
}

// SessionByID serves from Redis when the session is cached and falls back to
// the backend on a miss or on any cache error.
func (c *SessionCache) SessionByID(ctx context.Context, id string) (*models.ConversationSession, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err == nil {
		var session models.ConversationSession
		if err := json.Unmarshal(data, &session); err == nil {
			return &session, nil
		}

		c.logger.WarnContext(ctx, "Discarding undecodable cached session", "session_id", id)
		_ = c.client.Del(ctx, sessionKey(id)).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "Session cache read failed", "session_id", id, "error", err)
	}

	session, err := c.Persistence.SessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(session); err == nil {
		if err := c.client.Set(ctx, sessionKey(id), data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "Failed to cache session", "session_id", id, "error", err)
		}
	}

	return session, nil
}

// DeleteSession removes the cache entry before deleting from the backend so
// a concurrent read cannot resurrect a deleted session.
func (c *SessionCache) DeleteSession(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to evict cached session", "session_id", id, "error", err)
	}

	return c.Persistence.DeleteSession(ctx, id)
}

// HealthCheck requires both the cache and the backend to be reachable.
func (c *SessionCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return c.Persistence.HealthCheck(ctx)
}

// Close closes the Redis connection and then the backend.
func (c *SessionCache) Close(ctx context.Context) error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	return c.Persistence.Close(ctx)
}
