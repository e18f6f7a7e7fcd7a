package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"inspections-server/internal/auth"
	"inspections-server/internal/shared/errors"
	"inspections-server/internal/shared/response"
)

type contextKey string

const UserContextKey contextKey = "user"

// JWTMiddleware is the session guard: every request either resolves to an
// authenticated user placed in the request context, or is rejected with 401
// (the API form of a redirect to the login view).
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "jwt",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		cookie, err := r.Cookie("auth_token")
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		claims, err := auth.ValidateJWT(cookie.Value)
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		logger.Debug("JWT authentication successful", "user_id", claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocalUserMiddleware replaces the session guard when the server runs against
// the local single-user backend: there is no user database to log in against,
// so every request is attributed to a fixed local identity.
func LocalUserMiddleware(next http.Handler) http.Handler {
	claims := &auth.Claims{
		UserID: 1,
		Email:  "local@localhost",
		Name:   "Local User",
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the session claims resolved by JWTMiddleware.
func GetUserFromContext(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
