package tables

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"baseserver/internal/dto"
	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

func Replace(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table, id string, ts TableService) {
	op := pkg + "Replace"

	log = log.With(slog.String("op", op))

	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	project := models.ProjectFromContext(ctx)

	modified, err := ts.Replace(ctx, project, table, id, doc)
	if err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.ModifiedResponse{Modified: modified})
}
