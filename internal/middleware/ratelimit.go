package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/hlog"

	"github.com/ayush/content-coach/internal/apperr"
	"github.com/ayush/content-coach/internal/auth"
	"github.com/ayush/content-coach/internal/metrics"
	"github.com/ayush/content-coach/internal/web"
)

// KeyFunc builds a rate-limit key from the request.
type KeyFunc func(r *http.Request) string

// KeyByIP limits by client IP. Run chi's RealIP first so RemoteAddr is the
// client address behind a proxy.
func KeyByIP(name string) KeyFunc {
	return func(r *http.Request) string {
		return "rl:" + name + ":ip:" + clientIP(r)
	}
}

// KeyByUser limits by the authenticated user, falling back to the client IP
// for anonymous requests.
func KeyByUser(name string) KeyFunc {
	return func(r *http.Request) string {
		if uid, ok := auth.UserID(r.Context()); ok {
			return "rl:" + name + ":user:" + uid
		}
		return "rl:" + name + ":anon:" + clientIP(r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// incrExpireScript increments the window counter, starts the window on the
// first hit and returns {count, remaining ms}.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimit allows max requests per window for each key. Redis errors fail
// open. A nil client or non-positive limit disables the limiter.
func RateLimit(rdb redis.Scripter, name string, max int, window time.Duration, keyFn KeyFunc) func(http.Handler) http.Handler {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			res, err := incrExpireScript.Run(r.Context(), rdb, []string{keyFn(r)}, window.Milliseconds()).Int64Slice()
			if err != nil || len(res) != 2 {
				hlog.FromRequest(r).Warn().Err(err).Str("limiter", name).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			count, pttl := int(res[0]), res[1]

			resetSec := 0
			if pttl > 0 {
				resetSec = int((time.Duration(pttl)*time.Millisecond + time.Second - 1) / time.Second)
			}
			remaining := max - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

			if count > max {
				metrics.RateLimitedTotal.WithLabelValues(name).Inc()
				if resetSec > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(resetSec))
				}
				web.Error(w, r, apperr.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
