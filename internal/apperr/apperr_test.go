package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("signup: %w", New(DuplicateEmail, "taken"))

	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, MissingMessage, KindOf(ErrMissingMessage))
	assert.Equal(t, UpstreamError, KindOf(fmt.Errorf("wrapped: %w", Wrap(UpstreamError, "boom", errors.New("eof")))))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		DuplicateEmail:     http.StatusConflict,
		InvalidCredentials: http.StatusUnauthorized,
		Unauthenticated:    http.StatusUnauthorized,
		MissingMessage:     http.StatusBadRequest,
		InvalidInput:       http.StatusBadRequest,
		EmptyResponse:      http.StatusBadGateway,
		UpstreamError:      http.StatusBadGateway,
		RateLimited:        http.StatusTooManyRequests,
		Internal:           http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.Status(), k.String())
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Email already registered", PublicMessage(ErrDuplicateEmail))
	assert.Equal(t, "completion request failed: 429 Too Many Requests",
		PublicMessage(Wrap(UpstreamError, "completion request failed", errors.New("429 Too Many Requests"))))
	assert.Equal(t, "internal server error", PublicMessage(Wrap(Internal, "db", errors.New("conn reset"))))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(UpstreamError, "completion request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "completion request failed: dial tcp: timeout", err.Error())
}
