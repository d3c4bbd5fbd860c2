package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/content-coach/internal/apperr"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	SessionCookie     = "session"

	sessionKeyPrefix = "session:"
)

// SessionStore issues signed session tokens and keeps the live session set
// in Redis, so a token is only honoured while its entry exists.
type SessionStore struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionStore(rdb *redis.Client, secret string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{rdb: rdb, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of new sessions.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create stores a new session for userID and returns the token to hand to
// the client.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sid, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		_ = s.rdb.Del(ctx, sessionKeyPrefix+sid).Err()
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Resolve returns the user id behind token. Any failure to authenticate is
// reported as apperr.Unauthenticated; Redis outages are returned as-is.
func (s *SessionStore) Resolve(ctx context.Context, token string) (string, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return "", apperr.Wrap(apperr.Unauthenticated, apperr.ErrUnauthenticated.Message, err)
	}

	userID, err := s.rdb.Get(ctx, sessionKeyPrefix+claims.ID).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperr.ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if userID != claims.Subject {
		return "", apperr.ErrUnauthenticated
	}
	return userID, nil
}

// Delete removes the session behind token. Expired tokens are still
// accepted so that logout always clears server state.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	claims, err := s.parse(token, false)
	if err != nil {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKeyPrefix+claims.ID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) parse(token string, validate bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("session token missing claims")
	}
	return claims, nil
}

// SetSessionCookie writes the session token cookie.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated user id from ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
