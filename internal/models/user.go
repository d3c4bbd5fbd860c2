package models

import (
	"errors"
	"time"
)

// ErrUserNotFound is returned by user lookups that match no row.
var ErrUserNotFound = errors.New("user not found")

// Profile holds the onboarding answers used to personalise prompts.
type Profile struct {
	Name          string `json:"name"`
	BusinessNiche string `json:"business_niche"`
	ContentGoals  string `json:"content_goals"`
}

// User represents a row in the PostgreSQL users table.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialize
	Profile
	CreatedAt time.Time `json:"created_at"`
}

// SignupRequest is the JSON body for POST /signup.
type SignupRequest struct {
	Email         string `json:"email"          validate:"required,email"`
	Password      string `json:"password"       validate:"required,min=5,max=72"`
	Name          string `json:"name"           validate:"required"`
	BusinessNiche string `json:"business_niche" validate:"required"`
	ContentGoals  string `json:"content_goals"  validate:"required"`
}

// Profile returns the onboarding fields of the request.
func (r SignupRequest) Profile() Profile {
	return Profile{Name: r.Name, BusinessNiche: r.BusinessNiche, ContentGoals: r.ContentGoals}
}

// SignupResponse is the JSON reply for POST /signup.
type SignupResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
