// Package web renders the HTML pages and JSON envelopes shared by handlers.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/ayush/content-coach/internal/apperr"
	"github.com/ayush/content-coach/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// LoginPage is the data for login.html.
type LoginPage struct {
	Email string
	Error string
}

// ChatPage is the data for chat.html.
type ChatPage struct {
	User    *models.User
	History []models.Exchange
}

// Render executes the named page template. The page is buffered so a
// template failure still produces a clean 500.
func Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as {"error": "..."} with the status of its kind.
// Untagged and internal errors are logged and reported generically.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	LogIfInternal(r, err)
	JSON(w, kind.Status(), models.ErrorResponse{Error: apperr.PublicMessage(err)})
}

// LogIfInternal logs err when it would be hidden from the client.
func LogIfInternal(r *http.Request, err error) {
	if apperr.KindOf(err) != apperr.Internal {
		return
	}
	hlog.FromRequest(r).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("unhandled error")
}
