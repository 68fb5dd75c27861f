package handler

import (
	"context"
	"net/http"

	"github.com/bbwallet/portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

type sessionInfo struct {
	authenticated bool
	email         string
}

// SessionMiddleware resolves the pseudo-session once per request and
// injects it into the context. Resolution failures degrade to an
// unauthenticated session rather than failing the request.
func SessionMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := sessionInfo{}
			session, err := authSvc.Session(r.Context())
			if err != nil {
				logger.Warn("session resolution failed", zap.Error(err))
			} else {
				info.authenticated = session.Authenticated
				if session.User != nil {
					info.email = session.User.Email
				}
			}
			ctx := context.WithValue(r.Context(), sessionKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without an authenticated session.
func RequireSession(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				logger.Warn("unauthenticated request",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAuthenticated reports whether the request carries an authenticated
// session.
func IsAuthenticated(ctx context.Context) bool {
	info, _ := ctx.Value(sessionKey).(sessionInfo)
	return info.authenticated
}

// SessionEmail returns the session identity's email, or empty when
// unauthenticated.
func SessionEmail(ctx context.Context) string {
	info, _ := ctx.Value(sessionKey).(sessionInfo)
	if !info.authenticated {
		return ""
	}
	return info.email
}
