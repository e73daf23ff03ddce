package storage

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"baseserver/internal/dto"
	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

// UploadLimits bound one multipart upload request.
type UploadLimits struct {
	MaxFiles int
	MaxBytes int64
}

// Upload stores every file of the multipart "files" field and reports
// the stored names.
func Upload(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, limits UploadLimits, fs FileService) {
	op := pkg + "Upload"

	log = log.With(slog.String("op", op))

	if limits.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBytes)
	}

	if err := r.ParseMultipartForm(limits.MaxBytes); err != nil {
		log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		utils.WriteJSONError(w, http.StatusBadRequest, "please upload at least one file")
		return
	}
	if limits.MaxFiles > 0 && len(files) > limits.MaxFiles {
		utils.WriteJSONError(w, http.StatusBadRequest, "too many files")
		return
	}

	project := models.ProjectFromContext(ctx)

	uploaded := make([]dto.UploadedFile, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			log.Error("failed to open upload part", slog.String("error", err.Error()))
			utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
			return
		}

		stored, size, err := fs.Save(ctx, project, header.Filename, file)
		file.Close()
		if err != nil {
			if errors.Is(err, models.ErrInvalidProject) {
				utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error("failed to save upload", slog.String("error", err.Error()))
			utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
			return
		}

		uploaded = append(uploaded, dto.UploadedFile{
			Filename:     stored,
			OriginalName: header.Filename,
			Size:         size,
			MimeType:     header.Header.Get("Content-Type"),
		})
	}

	utils.WriteJSON(w, http.StatusCreated, dto.UploadResponse{
		Message: "files uploaded successfully",
		Files:   uploaded,
	})
}
