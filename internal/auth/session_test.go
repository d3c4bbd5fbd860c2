package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/content-coach/internal/apperr"
)

func newTestSessions(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb, "test-secret", ttl), mr
}

func TestSessionStore_CreateResolve(t *testing.T) {
	s, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, mr.Exists(sessionKeyPrefix+claims.ID))
	assert.Equal(t, time.Hour, mr.TTL(sessionKeyPrefix+claims.ID))

	userID, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSessionStore_DefaultTTL(t *testing.T) {
	s, _ := newTestSessions(t, 0)
	assert.Equal(t, DefaultSessionTTL, s.TTL())
}

func TestSessionStore_ResolveRejects(t *testing.T) {
	s, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	claims, err := s.parse(token, true)
	require.NoError(t, err)

	other := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "other-secret", time.Hour)
	foreign, err := other.Create(ctx, "user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		setup func()
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "tampered", token: token[:len(token)-2] + "xx"},
		{name: "wrong secret", token: foreign},
		{
			name:  "subject mismatch",
			token: token,
			setup: func() { require.NoError(t, mr.Set(sessionKeyPrefix+claims.ID, "user-2")) },
		},
		{
			name:  "deleted",
			token: token,
			setup: func() { mr.Del(sessionKeyPrefix + claims.ID) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			_, err := s.Resolve(ctx, tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}

func TestSessionStore_RedisExpiry(t *testing.T) {
	s, mr := newTestSessions(t, time.Minute)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestSessionStore_ExpiredToken(t *testing.T) {
	s, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	s.now = time.Now

	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// Logout still clears the server-side entry.
	require.NoError(t, s.Delete(ctx, token))
	assert.Empty(t, mr.Keys())
}

func TestSessionStore_Delete(t *testing.T) {
	s, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 1)

	require.NoError(t, s.Delete(ctx, token))
	assert.Empty(t, mr.Keys())

	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	assert.NoError(t, s.Delete(ctx, "garbage"))
}

func TestSessionStore_RedisDown(t *testing.T) {
	s, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)

	mr.Close()
	_, err = s.Resolve(ctx, token)
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

func TestSessionCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", time.Hour, true)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookie, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	id, ok := UserID(WithUserID(context.Background(), "user-1"))
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)
}
