package auth

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

func Register(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, svc Registerer) {
	op := pkg + "Register"

	log = log.With(slog.String("op", op))

	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	project := models.ProjectFromContext(ctx)

	user, err := svc.Register(ctx, project, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrUserExists) {
			log.Warn("user already exists")
			utils.WriteJSONError(w, http.StatusConflict, models.ErrUserExists.Error())
			return
		}
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrInvalidProject) {
			log.Warn("invalid registration", slog.String("error", err.Error()))
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to register user", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}
