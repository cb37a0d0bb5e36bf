package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/infrastructure/auth"
	"github.com/kodbank/kodbank/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CallerContextKey is the context key for the authenticated caller
	CallerContextKey ContextKey = "caller"
)

// AuthMiddleware creates an authentication middleware. The metrics
// receiver is optional.
func AuthMiddleware(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	countFailure := func(reason string) {
		if m != nil {
			m.AuthFailures.WithLabelValues(reason).Inc()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				countFailure("missing_header")
				http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				countFailure("malformed_header")
				http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				countFailure("invalid_token")
				http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}

			caller := domain.Caller{
				AccountID: claims.AccountID,
				Role:      claims.Role,
			}

			ctx := context.WithValue(r.Context(), CallerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin only passes callers whose role can perform administrative
// writes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}

		if !caller.Role.CanAdminister() {
			http.Error(w, domain.ErrInsufficientRole.Error(), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireGlobalViewer only passes callers whose role can read ledger-wide
// feeds and stats.
func RequireGlobalViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}

		if !caller.Role.CanViewGlobal() {
			http.Error(w, domain.ErrInsufficientRole.Error(), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CallerFromContext extracts the authenticated caller from context
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(CallerContextKey).(domain.Caller)
	return caller, ok
}

// WithCaller attaches a caller to the context. Test helper.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, CallerContextKey, caller)
}
