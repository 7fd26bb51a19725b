package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "storefront:session:abc", sessionKey("abc"))
	assert.Equal(t, "storefront:user_sessions:u-1", userSessionsKey("u-1"))
}

func TestSessionRepository_RejectsIncompleteSessions(t *testing.T) {
	repo := NewSessionRepository(nil, 0)
	ctx := context.Background()

	err := repo.Save(ctx, nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	err = repo.Save(ctx, &domain.Session{ID: "s-1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = repo.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func newTestRepository(t *testing.T) (*miniredis.Miniredis, repository.SessionRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSessionRepository(client, time.Hour)
}

func saveSession(t *testing.T, repo repository.SessionRepository, id, userID string, ttl time.Duration) {
	t.Helper()
	now := time.Now()
	require.NoError(t, repo.Save(context.Background(), &domain.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}))
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	mr, repo := newTestRepository(t)
	saveSession(t, repo, "s-1", "u-1", 10*time.Minute)

	session, err := repo.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", session.UserID)

	member, err := mr.IsMember(userSessionsKey("u-1"), "s-1")
	require.NoError(t, err)
	assert.True(t, member)
	assert.Greater(t, mr.TTL(sessionKey("s-1")), 9*time.Minute)
}

func TestSessionRepository_Delete(t *testing.T) {
	mr, repo := newTestRepository(t)
	ctx := context.Background()
	saveSession(t, repo, "s-1", "u-1", time.Hour)
	saveSession(t, repo, "s-2", "u-1", time.Hour)

	require.NoError(t, repo.Delete(ctx, "s-1"))
	require.NoError(t, repo.Delete(ctx, "missing"))

	_, err := repo.Get(ctx, "s-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	members, err := mr.Members(userSessionsKey("u-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s-2"}, members)
}

func TestSessionRepository_DeleteByUser(t *testing.T) {
	mr, repo := newTestRepository(t)
	ctx := context.Background()
	saveSession(t, repo, "s-1", "u-1", time.Hour)
	saveSession(t, repo, "s-2", "u-1", time.Hour)
	saveSession(t, repo, "s-3", "u-2", time.Hour)

	require.NoError(t, repo.DeleteByUser(ctx, "u-1"))

	for _, id := range []string{"s-1", "s-2"} {
		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, id)
	}
	assert.False(t, mr.Exists(userSessionsKey("u-1")))

	_, err := repo.Get(ctx, "s-3")
	assert.NoError(t, err)
}

func TestSessionRepository_ShortSessionKeepsIndexAlive(t *testing.T) {
	mr, repo := newTestRepository(t)
	ctx := context.Background()
	saveSession(t, repo, "long", "u-1", 24*time.Hour)
	saveSession(t, repo, "short", "u-1", 2*time.Second)

	assert.Greater(t, mr.TTL(userSessionsKey("u-1")), 23*time.Hour)

	mr.FastForward(3 * time.Second)
	assert.False(t, mr.Exists(sessionKey("short")))

	require.NoError(t, repo.DeleteByUser(ctx, "u-1"))
	_, err := repo.Get(ctx, "long")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepository_IndexTTLFollowsLongestSession(t *testing.T) {
	mr, repo := newTestRepository(t)
	saveSession(t, repo, "short", "u-1", time.Minute)
	assert.LessOrEqual(t, mr.TTL(userSessionsKey("u-1")), time.Minute)

	saveSession(t, repo, "long", "u-1", 2*time.Hour)
	assert.Greater(t, mr.TTL(userSessionsKey("u-1")), time.Hour)
}

func TestSessionRepository_Extend(t *testing.T) {
	mr, repo := newTestRepository(t)
	ctx := context.Background()
	saveSession(t, repo, "s-1", "u-1", time.Minute)

	require.NoError(t, repo.Extend(ctx, "s-1", 3600))

	session, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)
	assert.Greater(t, mr.TTL(sessionKey("s-1")), 59*time.Minute)
	assert.Greater(t, mr.TTL(userSessionsKey("u-1")), 59*time.Minute)

	err = repo.Extend(ctx, "missing", 60)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
