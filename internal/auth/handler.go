package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/ayush/content-coach/internal/apperr"
	"github.com/ayush/content-coach/internal/metrics"
	"github.com/ayush/content-coach/internal/models"
	"github.com/ayush/content-coach/internal/web"
)

const maxSignupBody = 64 << 10

// Sessions is the part of SessionStore the handlers need.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	creds        *Credentials
	sessions     Sessions
	validate     *requestValidator
	secureCookie bool
}

func NewHandler(creds *Credentials, sessions Sessions, secureCookie bool) *Handler {
	return &Handler{
		creds:        creds,
		sessions:     sessions,
		validate:     newRequestValidator(),
		secureCookie: secureCookie,
	}
}

// Index sends signed-in users to the chat page and everyone else to login.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := h.sessions.Resolve(r.Context(), c.Value); err == nil {
			target = "/chat"
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SignupPage renders the signup form.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, http.StatusOK, "signup.html", nil)
}

// Signup creates a user from a JSON body and signs them in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSignupBody)

	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		web.JSON(w, http.StatusBadRequest, models.SignupResponse{Error: "invalid request body"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Validate(req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		h.signupError(w, r, err)
		return
	}

	user, err := h.creds.CreateUser(r.Context(), req.Email, req.Password, req.Profile())
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateEmail) {
			metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.SignupsTotal.WithLabelValues("error").Inc()
		}
		h.signupError(w, r, err)
		return
	}
	metrics.SignupsTotal.WithLabelValues("ok").Inc()
	hlog.FromRequest(r).Info().Str("user_id", user.ID).Msg("user signed up")

	// The account exists at this point; a session failure only means the
	// client has to log in by hand.
	if token, err := h.sessions.Create(r.Context(), user.ID); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("user_id", user.ID).Msg("session after signup failed")
	} else {
		SetSessionCookie(w, token, h.sessions.TTL(), h.secureCookie)
	}
	web.JSON(w, http.StatusOK, models.SignupResponse{Success: true})
}

func (h *Handler) signupError(w http.ResponseWriter, r *http.Request, err error) {
	web.LogIfInternal(r, err)
	web.JSON(w, apperr.KindOf(err).Status(), models.SignupResponse{Error: apperr.PublicMessage(err)})
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, http.StatusOK, "login.html", web.LoginPage{})
}

// Login authenticates form credentials, sets the session cookie and
// redirects to the chat page. Failures re-render the form.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		web.Render(w, r, http.StatusBadRequest, "login.html", web.LoginPage{Error: "invalid form submission"})
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	user, err := h.creds.Authenticate(r.Context(), email, password)
	if err != nil {
		result := "invalid"
		if apperr.KindOf(err) == apperr.Internal {
			result = "error"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		web.LogIfInternal(r, err)
		web.Render(w, r, apperr.KindOf(err).Status(), "login.html", web.LoginPage{
			Email: email,
			Error: apperr.PublicMessage(err),
		})
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		web.LogIfInternal(r, err)
		web.Render(w, r, http.StatusInternalServerError, "login.html", web.LoginPage{
			Email: email,
			Error: apperr.PublicMessage(err),
		})
		return
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	SetSessionCookie(w, token, h.sessions.TTL(), h.secureCookie)
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// Logout destroys the current session and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), c.Value); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("delete session failed")
		}
	}
	ClearSessionCookie(w, h.secureCookie)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
