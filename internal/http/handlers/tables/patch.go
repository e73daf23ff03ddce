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

func Patch(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table string, ts TableService) {
	op := pkg + "Patch"

	log = log.With(slog.String("op", op))

	var patch models.Document
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	project := models.ProjectFromContext(ctx)

	modified, err := ts.Patch(ctx, project, table, r.URL.Query(), patch)
	if err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.ModifiedResponse{Modified: modified})
}
