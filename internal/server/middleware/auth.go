package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/jobtrail/pkg/api"
)

// TokenValidator проверяет bearer токен и возвращает ID пользователя
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth requires a valid bearer token and puts its subject into the request
// context.
func Auth(validator TokenValidator, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get(api.HeaderAuthorization)
			if authHeader == "" {
				logger.Warn("missing authorization header", slog.String("path", r.URL.Path))
				unauthorized(w, "missing bearer token")
				return
			}

			// ожидаем "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.Warn("invalid authorization header format", slog.String("path", r.URL.Path))
				unauthorized(w, "invalid authorization header")
				return
			}

			userID, err := validator.Validate(strings.TrimSpace(token))
			if err != nil {
				logger.Warn("invalid access token", slog.Any("error", err))
				unauthorized(w, "invalid token")
				return
			}

			logger.Debug("request authenticated", slog.String("user_id", userID))
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	api.WriteError(w, http.StatusUnauthorized, api.ErrorResponse{
		Code:    api.CodeUnauthorized,
		Message: msg,
	})
}
