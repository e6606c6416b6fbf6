package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"voting/internal/domain"
	"voting/internal/observability/middleware"
	"voting/internal/service"
)

type callerKey struct{}

func withCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func callerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(domain.Caller)
	return c, ok
}

// requireCaller resolves the bearer token to an active user and stores the
// caller in the request context. Anything else is answered 401.
func requireCaller(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if len(raw) < len("Bearer ") || !strings.EqualFold(raw[:len("Bearer ")], "bearer ") {
				writeError(w, r, domain.Unauthenticated("authentication required"))
				return
			}
			token := strings.TrimSpace(raw[len("Bearer "):])

			caller, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				slog.Warn("rejected bearer token", append([]any{"error", err}, middleware.LogAttrs(r.Context())...)...)
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}
