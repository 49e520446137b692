package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	request "votegate/pkg/platform/middleware/request"
)

// TokenValidator validates an admin bearer token.
type TokenValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// Claims is what the middleware needs from a validated token.
type Claims struct {
	Subject string
	TokenID string
}

// Context key for storing admin actor identifier.
type contextKeyAdminActorID struct{}

// ContextKeyAdminActorID is exported for use in handlers and tests.
var ContextKeyAdminActorID = contextKeyAdminActorID{}

// GetAdminActorID retrieves the admin actor identifier from the context.
// Returns empty string if not set or if this is not an admin request.
func GetAdminActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(ContextKeyAdminActorID).(string); ok {
		return actorID
	}
	return ""
}

// IsAdminRequest reports whether the request passed RequireAdmin.
func IsAdminRequest(ctx context.Context) bool {
	return GetAdminActorID(ctx) != ""
}

// RequireAdmin rejects requests without a valid `Authorization: Bearer` admin
// token and stores the token subject as the admin actor.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized admin access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil || claims.Subject == "" {
				logger.WarnContext(ctx, "unauthorized admin access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			ctx = context.WithValue(ctx, ContextKeyAdminActorID, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
