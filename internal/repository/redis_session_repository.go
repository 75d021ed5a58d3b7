package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
)

const scanBatchSize = 100

// redisSessionRepository stores each session as a JSON value with a sliding TTL
type redisSessionRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionRepository creates a Redis-backed SessionRepository
func NewRedisSessionRepository(client *redis.Client, keyPrefix string, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *redisSessionRepository) key(id uuid.UUID) string {
	return r.keyPrefix + id.String()
}

func (r *redisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.key(session.ID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

func (r *redisSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// Update overwrites the session and refreshes its TTL
func (r *redisSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ok, err := r.client.SetXX(ctx, r.key(session.ID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// DeleteIdleSince removes sessions whose UpdatedAt is older than cutoff.
// Redis TTLs already expire abandoned sessions; this catches sessions whose
// TTL is longer than the configured idle window.
func (r *redisSessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := r.scan(ctx, func(key string) error {
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		var session domain.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return nil
		}
		if session.UpdatedAt.Before(cutoff) {
			if err := r.client.Del(ctx, key).Err(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (r *redisSessionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.scan(ctx, func(string) error {
		count++
		return nil
	})
	return count, err
}

func (r *redisSessionRepository) scan(ctx context.Context, fn func(key string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.keyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := fn(key); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
