package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/content-coach/internal/apperr"
	"github.com/ayush/content-coach/internal/models"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, p models.Profile) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var errPasswordTooLong = apperr.New(apperr.InvalidInput, "password must be at most 72 bytes")

// Credentials owns user creation and password checks on top of a UserStore.
type Credentials struct {
	users UserStore
	cost  int
}

func NewCredentials(users UserStore) *Credentials {
	return &Credentials{users: users, cost: bcrypt.DefaultCost}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser hashes password and stores a new user. It fails with
// apperr.DuplicateEmail when the email is already taken.
func (c *Credentials) CreateUser(ctx context.Context, email, password string, p models.Profile) (*models.User, error) {
	email = NormalizeEmail(email)
	if len(password) > MaxPasswordBytes {
		return nil, errPasswordTooLong
	}

	existing, err := c.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, apperr.ErrDuplicateEmail
	case err != nil && !errors.Is(err, models.ErrUserNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return c.users.CreateUser(ctx, email, string(hash), p)
}

// FindByEmail returns models.ErrUserNotFound when no user matches.
func (c *Credentials) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.users.GetUserByEmail(ctx, NormalizeEmail(email))
}

// FindByID returns models.ErrUserNotFound when no user matches.
func (c *Credentials) FindByID(ctx context.Context, id string) (*models.User, error) {
	return c.users.GetUserByID(ctx, id)
}

// VerifyPassword reports whether password matches the user's stored hash.
func (c *Credentials) VerifyPassword(u *models.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Authenticate looks up email and checks password, folding every miss into
// apperr.InvalidCredentials.
func (c *Credentials) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := c.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !c.VerifyPassword(u, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}
