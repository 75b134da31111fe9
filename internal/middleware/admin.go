package middleware

import (
	"log/slog"
	"net/http"

	"galaxy-server/internal/auth"
	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/response"
)

func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "admin",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		logger.Debug("Processing admin authorization")

		claims := GetUserFromContext(r)
		if claims == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		if claims.Role != auth.RoleAdmin {
			logger.Warn("Non-admin token attempted to access admin endpoint",
				"subject", claims.Subject,
				"role", claims.Role)
			response.Error(w, r, logger, errors.Forbidden("admin access required"))
			return
		}

		logger.Debug("Admin authorization successful", "subject", claims.Subject)

		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(secret string, next http.Handler) http.Handler {
	return JWTMiddleware(secret, AdminMiddleware(next))
}
