package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"

	"go.uber.org/zap"
)

const PrincipalKey contextKey = "principal"

// ValidateFunc проверяет access-токен и возвращает владельца.
type ValidateFunc func(ctx context.Context, token string) (*user.Principal, error)

func Auth(validate ValidateFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, r, "Требуется заголовок Authorization")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, r, "Ожидается схема Bearer")
				return
			}

			principal, err := validate(r.Context(), parts[1])
			if err != nil {
				logger.Warn(
					"AUTH: Недействительный токен",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				unauthorized(w, r, "Недействительный или просроченный токен")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPrincipal(ctx context.Context) *user.Principal {
	if p, ok := ctx.Value(PrincipalKey).(*user.Principal); ok {
		return p
	}
	return nil
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    msg,
		"request_id": GetRequestID(r.Context()),
	})
}
