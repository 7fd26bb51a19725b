package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

const (
	sessionPrefix     = "storefront:session:"
	userSessionPrefix = "storefront:user_sessions:"
)

type sessionRepository struct {
	client redislib.Cmdable
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository. Each user
// keeps an index set of session ids so logout can revoke every device.
func NewSessionRepository(client redislib.Cmdable, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	result, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = r.ttl
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
		pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
		// The index must outlive every session it lists, so its TTL only grows.
		pipe.ExpireNX(ctx, userSessionsKey(session.UserID), ttl)
		pipe.ExpireGT(ctx, userSessionsKey(session.UserID), ttl)
		return nil
	})
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, userSessionsKey(session.UserID), id)
		return nil
	})
	return err
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	return r.client.Del(ctx, keys...).Err()
}

// Extend moves the session expiry to now+ttl, rewriting the stored payload so
// ExpiresAt agrees with the key TTL.
func (r *sessionRepository) Extend(ctx context.Context, id string, ttlSeconds int) error {
	duration := time.Duration(ttlSeconds) * time.Second
	if duration <= 0 {
		duration = r.ttl
	}
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	session.ExpiresAt = time.Now().Add(duration)
	return r.Save(ctx, session)
}

func sessionKey(id string) string {
	return sessionPrefix + id
}

func userSessionsKey(userID string) string {
	return userSessionPrefix + userID
}
