package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"baseserver/internal/dto"
	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

// Get serves both the self-profile route (id from token claims) and
// the admin by-id route.
func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, id string, us UserService) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	user, err := us.UserByID(ctx, project, id)
	if err != nil {
		writeUserError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

func Update(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, id string, us UserService) {
	op := pkg + "Update"

	log = log.With(slog.String("op", op))

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	project := models.ProjectFromContext(ctx)

	if err := us.Update(ctx, project, id, req.Email, req.Password); err != nil {
		writeUserError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "user updated successfully"})
}

func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, id string, us UserService) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op))

	project := models.ProjectFromContext(ctx)

	if err := us.Delete(ctx, project, id); err != nil {
		writeUserError(log, w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "user deleted successfully"})
}

func writeUserError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		utils.WriteJSONError(w, http.StatusNotFound, models.ErrUserNotFound.Error())
	case errors.Is(err, models.ErrUserExists):
		utils.WriteJSONError(w, http.StatusConflict, models.ErrUserExists.Error())
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidProject):
		utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("user operation failed", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
	}
}
