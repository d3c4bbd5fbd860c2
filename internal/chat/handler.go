package chat

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/ayush/content-coach/internal/apperr"
	"github.com/ayush/content-coach/internal/auth"
	"github.com/ayush/content-coach/internal/models"
	"github.com/ayush/content-coach/internal/web"
)

const (
	pageHistoryLimit    = 20
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	maxExportExchanges  = 5000
)

// Completer produces a model reply for a system prompt and user message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
	Model() string
}

// UserFinder looks up users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SessionDeleter removes a server-side session.
type SessionDeleter interface {
	Delete(ctx context.Context, token string) error
}

// HistoryStore persists chat exchanges.
type HistoryStore interface {
	Insert(ctx context.Context, ex *models.Exchange) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Exchange, error)
}

// FileStore archives exported transcripts.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Options holds the optional collaborators of a Handler. A nil History
// disables persistence; a nil Archive skips transcript archiving.
type Options struct {
	History      HistoryStore
	Archive      FileStore
	SecureCookie bool
}

// Handler holds chat-related HTTP handlers. Every route expects the session
// guard to have put the user id in the request context.
type Handler struct {
	users     UserFinder
	completer Completer
	sessions  SessionDeleter
	history   HistoryStore
	archive   FileStore
	secure    bool
	now       func() time.Time
}

func NewHandler(users UserFinder, completer Completer, sessions SessionDeleter, opts Options) *Handler {
	return &Handler{
		users:     users,
		completer: completer,
		sessions:  sessions,
		history:   opts.History,
		archive:   opts.Archive,
		secure:    opts.SecureCookie,
		now:       time.Now,
	}
}

// Page renders the chat page with the user's recent exchanges.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(w, r)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unauthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		web.LogIfInternal(r, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var recent []models.Exchange
	if h.history != nil {
		recent, err = h.history.ListByUser(r.Context(), user.ID, pageHistoryLimit)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("user_id", user.ID).Msg("load history failed")
		}
	}
	web.Render(w, r, http.StatusOK, "chat.html", web.ChatPage{User: user, History: chronological(recent)})
}

// Send forwards the form field "message" to the completion API and returns
// the reply as {"response": "..."}.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		web.Error(w, r, apperr.ErrMissingMessage)
		return
	}

	user, err := h.currentUser(w, r)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	reply, err := h.completer.Complete(r.Context(), BuildSystemPrompt(user), message)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("user_id", user.ID).Msg("completion failed")
		web.Error(w, r, err)
		return
	}

	if h.history != nil {
		ex := &models.Exchange{
			UserID:    user.ID,
			Message:   message,
			Response:  reply,
			Model:     h.completer.Model(),
			CreatedAt: h.now().UTC(),
		}
		if err := h.history.Insert(r.Context(), ex); err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("user_id", user.ID).Msg("save exchange failed")
		}
	}

	web.JSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// History returns the user's exchanges, newest first. ?limit= caps the
// count.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(w, r)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	limit := int64(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			web.Error(w, r, apperr.New(apperr.InvalidInput, "limit must be between 1 and "+strconv.Itoa(maxHistoryLimit)))
			return
		}
		limit = n
	}

	history := []models.Exchange{}
	if h.history != nil {
		list, err := h.history.ListByUser(r.Context(), user.ID, limit)
		if err != nil {
			web.Error(w, r, err)
			return
		}
		if list != nil {
			history = list
		}
	}
	web.JSON(w, http.StatusOK, models.HistoryResponse{History: history})
}

// Export returns the user's transcript, capped at the most recent
// maxExportExchanges, as a text attachment and archives a copy when a
// FileStore is configured.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(w, r)
	if err != nil {
		web.Error(w, r, err)
		return
	}

	var all []models.Exchange
	if h.history != nil {
		all, err = h.history.ListByUser(r.Context(), user.ID, maxExportExchanges)
		if err != nil {
			web.Error(w, r, err)
			return
		}
	}

	now := h.now()
	body := []byte(RenderTranscript(user, chronological(all), now))
	key := TranscriptKey(user.ID, now)

	if h.archive != nil {
		if err := h.archive.Upload(r.Context(), key, body, "text/plain; charset=utf-8"); err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("key", key).Msg("archive transcript failed")
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+key[strings.LastIndex(key, "/")+1:]+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// currentUser loads the user named by the session. A user that no longer
// exists ends the session and reports apperr.Unauthenticated.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, error) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}
	user, err := h.users.FindByID(r.Context(), userID)
	if errors.Is(err, models.ErrUserNotFound) {
		if c, cerr := r.Cookie(auth.SessionCookie); cerr == nil {
			if err := h.sessions.Delete(r.Context(), c.Value); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("delete session failed")
			}
		}
		auth.ClearSessionCookie(w, h.secure)
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
