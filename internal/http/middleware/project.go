package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

// ProjectHeader carries the tenant name on every API request.
const ProjectHeader = "X-Project-Name"

// Project extracts the project name header and stores it in the
// request context. Requests without one are rejected before reaching
// any handler.
func Project(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := pkg + "Project"

			project := r.Header.Get(ProjectHeader)
			if project == "" {
				log.Warn("missing project header", slog.String("op", op), slog.String("path", r.URL.Path))
				utils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidProject.Error())
				return
			}

			ctx := context.WithValue(r.Context(), models.ProjectContextKey, project)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
