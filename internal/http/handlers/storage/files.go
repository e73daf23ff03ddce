package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"baseserver/internal/dto"
	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

func List(ctx context.Context, log *slog.Logger, w http.ResponseWriter, fs FileService) {
	op := pkg + "List"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	names, err := fs.List(ctx, project)
	if err != nil {
		if errors.Is(err, models.ErrInvalidProject) {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to list files", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, names)
}

func Download(ctx context.Context, log *slog.Logger, w http.ResponseWriter, filename string, fs FileService) {
	op := pkg + "Download"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	file, size, err := fs.Open(ctx, project, filename)
	if err != nil {
		writeFileError(log, w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if _, err := io.Copy(w, file); err != nil {
		log.Error("failed to stream file", slog.String("error", err.Error()))
	}
}

func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, filename string, fs FileService) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	if err := fs.Delete(ctx, project, filename); err != nil {
		writeFileError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "file deleted successfully"})
}

func writeFileError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrFileNotFound):
		utils.WriteJSONError(w, http.StatusNotFound, models.ErrFileNotFound.Error())
	case errors.Is(err, models.ErrInvalidProject):
		utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("storage operation failed", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
	}
}
