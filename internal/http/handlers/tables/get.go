package tables

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

// TotalCountHeader reports the unpaginated match count on list
// responses.
const TotalCountHeader = "X-Total-Count"

func List(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table string, ts TableService) {
	op := pkg + "List"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	docs, total, err := ts.List(ctx, project, table, r.URL.Query())
	if err != nil {
		if errors.Is(err, models.ErrInvalidTable) || errors.Is(err, models.ErrInvalidProject) {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to list documents", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	utils.WriteJSON(w, http.StatusOK, docs)
}

func GetByID(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table, id string, ts TableService) {
	op := pkg + "GetByID"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	doc, err := ts.Get(ctx, project, table, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
			return
		}
		if errors.Is(err, models.ErrInvalidTable) || errors.Is(err, models.ErrInvalidProject) {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to get document", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, doc)
}
