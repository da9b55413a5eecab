package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy_backend/internal/feature/member/domain/entity"
	"strategy_backend/internal/feature/member/usecase"
)

func setupStore(t *testing.T) (*SessionRedis, *redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionRedis(client, "session"), client, mr
}

func newSession(id string, memberID uint) *entity.Session {
	now := time.Now()
	return &entity.Session{
		ID:        id,
		MemberID:  memberID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestSessionRedis_CreateAndFind(t *testing.T) {
	store, client, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession("abc123", 7)))

	found, err := store.FindByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, uint(7), found.MemberID)
	assert.Equal(t, "test-agent", found.UserAgent)
	assert.True(t, found.IsValid())

	// A TTL must be attached so Redis drops the session at expiry.
	assert.Greater(t, mr.TTL("session:abc123"), time.Duration(0))

	// The member's session set tracks the ID for bulk revocation.
	isMember, err := client.SIsMember(ctx, "session:member:7", "abc123").Result()
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestSessionRedis_FindByID_NotFound(t *testing.T) {
	store, _, _ := setupStore(t)

	_, err := store.FindByID(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_Create_AlreadyExpired(t *testing.T) {
	store, _, _ := setupStore(t)

	s := newSession("stale", 7)
	s.ExpiresAt = time.Now().Add(-time.Minute)

	assert.Error(t, store.Create(context.Background(), s))
}

func TestSessionRedis_Revoke(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession("abc123", 7)))
	require.NoError(t, store.Revoke(ctx, "abc123"))

	found, err := store.FindByID(ctx, "abc123")
	require.NoError(t, err, "a revoked session stays readable until its TTL")
	assert.True(t, found.IsRevoked())
	assert.False(t, found.IsValid())

	// Revoking twice is a no-op.
	assert.NoError(t, store.Revoke(ctx, "abc123"))
}

func TestSessionRedis_Revoke_NotFound(t *testing.T) {
	store, _, _ := setupStore(t)

	err := store.Revoke(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_RevokeAllByMemberID(t *testing.T) {
	store, _, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession("one", 7)))
	require.NoError(t, store.Create(ctx, newSession("two", 7)))
	require.NoError(t, store.Create(ctx, newSession("other", 8)))

	// A session whose key already expired must not break the loop.
	mr.Del("session:one")

	require.NoError(t, store.RevokeAllByMemberID(ctx, 7))

	two, err := store.FindByID(ctx, "two")
	require.NoError(t, err)
	assert.True(t, two.IsRevoked())

	other, err := store.FindByID(ctx, "other")
	require.NoError(t, err)
	assert.False(t, other.IsRevoked(), "another member's session must stay valid")
}
