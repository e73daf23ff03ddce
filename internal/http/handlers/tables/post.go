package tables

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"baseserver/internal/dto"
	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

func Create(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table string, ts TableService) {
	op := pkg + "Create"

	log = log.With(slog.String("op", op))

	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	project := models.ProjectFromContext(ctx)

	stored, err := ts.Create(ctx, project, table, doc)
	if err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, stored)
}

func BulkCreate(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table string, ts TableService) {
	op := pkg + "BulkCreate"

	log = log.With(slog.String("op", op))

	var docs []models.Document
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	project := models.ProjectFromContext(ctx)

	stored, err := ts.BulkCreate(ctx, project, table, docs)
	if err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, stored)
}

func Count(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, table string, ts TableService) {
	op := pkg + "Count"

	log = log.With(slog.String("op", op))

	body := map[string]any{}
	if r.Body != nil {
		// An empty or absent body counts the whole collection.
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			log.Warn("failed to decode body", slog.String("error", err.Error()))
			utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		defer r.Body.Close()
	}

	project := models.ProjectFromContext(ctx)

	count, err := ts.Count(ctx, project, table, body)
	if err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}

func CreateFolder(ctx context.Context, log *slog.Logger, w http.ResponseWriter, table string, ts TableService) {
	op := pkg + "CreateFolder"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	if err := ts.CreateFolder(project, table); err != nil {
		writeTableError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, dto.MessageResponse{Message: "folder created"})
}

func writeTableError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidTable),
		errors.Is(err, models.ErrInvalidProject):
		utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		utils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
	default:
		log.Error("table operation failed", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
	}
}
