package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/vadimbarashkov/short-links/internal/models"
	"github.com/vadimbarashkov/short-links/pkg/response"
)

// userIDHeader carries the caller identity set by the upstream auth gateway.
const userIDHeader = "X-User-ID"

type ctxKey int

const ownerIDKey ctxKey = iota

func ownerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerIDKey).(string)
	return id
}

func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := strings.TrimSpace(r.Header.Get(userIDHeader))
		if ownerID == "" || ownerID == models.AnonymousOwner {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.UnauthorizedResponse)
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimit returns a middleware factory keyed by scope and client address.
// Limiter failures let the request through.
func rateLimit(logger *slog.Logger, l Limiter) func(scope string) func(http.Handler) http.Handler {
	return func(scope string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			if l == nil {
				return next
			}

			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				key := scope + ":" + clientIP(r)

				allowed, err := l.Allow(r.Context(), key)
				if err != nil {
					logger.ErrorContext(r.Context(), "rate limiter unavailable",
						slog.String("key", key),
						slog.Any("err", err),
					)
					next.ServeHTTP(w, r)
					return
				}

				if !allowed {
					render.Status(r, http.StatusTooManyRequests)
					render.JSON(w, r, response.TooManyRequestsResponse)
					return
				}

				next.ServeHTTP(w, r)
			})
		}
	}
}
