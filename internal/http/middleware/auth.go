package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

// Auth verifies the bearer token against the request's project secret
// and stores the claims in the context. A missing token is 401; a
// present but invalid or expired one is 403.
func Auth(log *slog.Logger, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := pkg + "Auth"

			token := bearerToken(r)
			if token == "" {
				utils.WriteJSONError(w, http.StatusUnauthorized, models.ErrUnauthorized.Error())
				return
			}

			project := models.ProjectFromContext(r.Context())

			claims, err := verifier.VerifyToken(project, token)
			if err != nil {
				if errors.Is(err, models.ErrTokenExpired) || errors.Is(err, models.ErrTokenInvalid) {
					log.Warn("token rejected", slog.String("op", op), slog.String("error", err.Error()))
					utils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
					return
				}
				log.Error("failed to verify token", slog.String("op", op), slog.String("error", err.Error()))
				utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
				return
			}

			ctx := context.WithValue(r.Context(), models.ClaimsContextKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a subrouter to admin claims. Must run after Auth.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := models.ClaimsFromContext(r.Context())
			if claims == nil || claims.Role != models.RoleAdmin {
				utils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
