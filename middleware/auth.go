package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenParser проверяет токен доступа и возвращает ID пользователя
type TokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// AuthMiddleware проверяет токен из заголовка Authorization и кладет ID пользователя в контекст
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeUnauthorized(w, "Authorization header is required")
				return
			}

			// Убираем префикс "Bearer " если он есть
			tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			userID, err := tokens.ParseAccessToken(tokenString)
			if err != nil {
				writeUnauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID добавляет ID пользователя в контекст
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext получает ID пользователя из контекста
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
