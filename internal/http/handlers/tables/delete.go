package tables

import (
	"context"
	"log/slog"
	"net/http"

	"baseserver/internal/dto"
	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

func DeleteByID(ctx context.Context, log *slog.Logger, w http.ResponseWriter, table, id string, ts TableService) {
	op := pkg + "DeleteByID"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	if err := ts.DeleteByID(ctx, project, table, id); err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.DeletedResponse{Deleted: 1})
}

func DeleteByFilter(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table string, ts TableService) {
	op := pkg + "DeleteByFilter"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	deleted, err := ts.DeleteByFilter(ctx, project, table, r.URL.Query())
	if err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.DeletedResponse{Deleted: deleted})
}
