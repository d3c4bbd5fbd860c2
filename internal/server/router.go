// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ayush/content-coach/internal/auth"
	"github.com/ayush/content-coach/internal/chat"
	"github.com/ayush/content-coach/internal/config"
	"github.com/ayush/content-coach/internal/middleware"
	"github.com/ayush/content-coach/internal/web"
)

// Deps are the collaborators the router wires together. A nil Limiter
// disables rate limiting.
type Deps struct {
	Logger       zerolog.Logger
	Auth         *auth.Handler
	Chat         *chat.Handler
	Sessions     middleware.SessionResolver
	Limiter      redis.Scripter
	RateLimit    config.RateLimitConfig
	CORSOrigins  []string
	SecureCookie bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	pageGuard := middleware.RequirePageSession(d.Sessions, d.SecureCookie)
	jsonGuard := middleware.RequireSession(d.Sessions, d.SecureCookie)
	loginLimit := middleware.RateLimit(d.Limiter, "login", d.RateLimit.Login, d.RateLimit.Window, middleware.KeyByIP("login"))
	chatLimit := middleware.RateLimit(d.Limiter, "chat", d.RateLimit.Chat, d.RateLimit.Window, middleware.KeyByUser("chat"))

	r.Get("/", d.Auth.Index)
	r.Get("/signup", d.Auth.SignupPage)
	r.Post("/signup", d.Auth.Signup)
	r.Get("/login", d.Auth.LoginPage)
	r.With(loginLimit).Post("/login", d.Auth.Login)
	r.With(pageGuard).Get("/logout", d.Auth.Logout)

	r.Route("/chat", func(r chi.Router) {
		r.With(pageGuard).Get("/", d.Chat.Page)
		r.Group(func(r chi.Router) {
			r.Use(jsonGuard)
			r.With(chatLimit).Post("/", d.Chat.Send)
			r.Get("/history", d.Chat.History)
			r.Get("/export", d.Chat.Export)
		})
	})

	return r
}
