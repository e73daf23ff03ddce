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

func Login(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, svc LoginService) {
	op := pkg + "Login"

	log = log.With(slog.String("op", op))

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	project := models.ProjectFromContext(ctx)

	token, err := svc.Login(ctx, project, req.Email, req.Password, req.Remember)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			log.Info("invalid credentials")
			utils.WriteJSONError(w, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())
			return
		}
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrInvalidProject) {
			log.Warn("invalid login", slog.String("error", err.Error()))
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to login user", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}
