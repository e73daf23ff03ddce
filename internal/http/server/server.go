package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"baseserver/internal/config"
	authhandler "baseserver/internal/http/handlers/auth"
	storagehandler "baseserver/internal/http/handlers/storage"
	"baseserver/internal/http/handlers/tables"
	"baseserver/internal/http/handlers/users"
	"baseserver/internal/http/middleware"
	"baseserver/internal/models"
	utils "baseserver/internal/utils/http_errors"
)

// APIPrefix is the mount point of every route.
const APIPrefix = "/rest/v1"

func StartServer(
	ctx context.Context,
	cfg *config.HTTPServer,
	uploads config.Uploads,
	log *slog.Logger,
	tableService TableService,
	authService AuthService,
	userService UserService,
	fileService FileService,
) error {
	r := NewRouter(log, uploads, tableService, authService, userService, fileService)

	srv := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
		Handler:      r,
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server closed gracefully")
			} else {
				log.Error("could not start server:", "error", err)
				errChan <- err
			}
		}
	}()
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server", "error", err)
			return err
		}
		log.Info("server exited gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

// NewRouter builds the full route table. Split out of StartServer so
// tests can drive the router directly.
func NewRouter(
	log *slog.Logger,
	uploads config.Uploads,
	tableService TableService,
	authService AuthService,
	userService UserService,
	fileService FileService,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS)

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.Use(middleware.Project(log))

	// Auth: the only routes reachable without a token.
	api.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		authhandler.Register(r.Context(), log, w, r, authService)
	}).Methods(http.MethodPost)

	api.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		authhandler.Login(r.Context(), log, w, r, authService)
	}).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Auth(log, authService))

	// Tables. The fixed sub-paths are registered before the {id}
	// routes so they keep matching first.
	protected.HandleFunc("/tables/{table}/bulk", func(w http.ResponseWriter, r *http.Request) {
		tables.BulkCreate(r.Context(), log, w, r, mux.Vars(r)["table"], tableService)
	}).Methods(http.MethodPost)

	protected.HandleFunc("/tables/{table}/_count", func(w http.ResponseWriter, r *http.Request) {
		tables.Count(r.Context(), log, w, r, mux.Vars(r)["table"], tableService)
	}).Methods(http.MethodPost)

	protected.HandleFunc("/tables/{table}/_folders", func(w http.ResponseWriter, r *http.Request) {
		tables.CreateFolder(r.Context(), log, w, mux.Vars(r)["table"], tableService)
	}).Methods(http.MethodPost)

	protected.HandleFunc("/tables/{table}", func(w http.ResponseWriter, r *http.Request) {
		tables.List(r.Context(), log, w, r, mux.Vars(r)["table"], tableService)
	}).Methods(http.MethodGet)

	protected.HandleFunc("/tables/{table}", func(w http.ResponseWriter, r *http.Request) {
		tables.Create(r.Context(), log, w, r, mux.Vars(r)["table"], tableService)
	}).Methods(http.MethodPost)

	protected.HandleFunc("/tables/{table}", func(w http.ResponseWriter, r *http.Request) {
		tables.Patch(r.Context(), log, w, r, mux.Vars(r)["table"], tableService)
	}).Methods(http.MethodPatch)

	protected.HandleFunc("/tables/{table}", func(w http.ResponseWriter, r *http.Request) {
		tables.DeleteByFilter(r.Context(), log, w, r, mux.Vars(r)["table"], tableService)
	}).Methods(http.MethodDelete)

	protected.HandleFunc("/tables/{table}/{id}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		tables.GetByID(r.Context(), log, w, r, vars["table"], vars["id"], tableService)
	}).Methods(http.MethodGet)

	protected.HandleFunc("/tables/{table}/{id}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		tables.Replace(r.Context(), log, w, r, vars["table"], vars["id"], tableService)
	}).Methods(http.MethodPut)

	protected.HandleFunc("/tables/{table}/{id}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		tables.DeleteByID(r.Context(), log, w, vars["table"], vars["id"], tableService)
	}).Methods(http.MethodDelete)

	// Users: self-service routes resolve the id from the token.
	protected.HandleFunc("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		users.Get(r.Context(), log, w, claimsUserID(r), userService)
	}).Methods(http.MethodGet)

	protected.HandleFunc("/users/update", func(w http.ResponseWriter, r *http.Request) {
		users.Update(r.Context(), log, w, r, claimsUserID(r), userService)
	}).Methods(http.MethodPut)

	protected.HandleFunc("/users/delete", func(w http.ResponseWriter, r *http.Request) {
		users.Delete(r.Context(), log, w, claimsUserID(r), userService)
	}).Methods(http.MethodDelete)

	admin := protected.NewRoute().Subrouter()
	admin.Use(middleware.RequireAdmin(log))

	admin.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		users.Get(r.Context(), log, w, mux.Vars(r)["id"], userService)
	}).Methods(http.MethodGet)

	admin.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		users.Update(r.Context(), log, w, r, mux.Vars(r)["id"], userService)
	}).Methods(http.MethodPut)

	admin.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		users.Delete(r.Context(), log, w, mux.Vars(r)["id"], userService)
	}).Methods(http.MethodDelete)

	// Storage.
	limits := storagehandler.UploadLimits{MaxFiles: uploads.MaxFiles, MaxBytes: uploads.MaxBytes}

	protected.HandleFunc("/storage/upload", func(w http.ResponseWriter, r *http.Request) {
		storagehandler.Upload(r.Context(), log, w, r, limits, fileService)
	}).Methods(http.MethodPost)

	protected.HandleFunc("/storage/files", func(w http.ResponseWriter, r *http.Request) {
		storagehandler.List(r.Context(), log, w, fileService)
	}).Methods(http.MethodGet)

	protected.HandleFunc("/storage/files/{filename}", func(w http.ResponseWriter, r *http.Request) {
		storagehandler.Download(r.Context(), log, w, mux.Vars(r)["filename"], fileService)
	}).Methods(http.MethodGet)

	protected.HandleFunc("/storage/files/{filename}", func(w http.ResponseWriter, r *http.Request) {
		storagehandler.Delete(r.Context(), log, w, mux.Vars(r)["filename"], fileService)
	}).Methods(http.MethodDelete)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowed.Error())
	})

	return r
}

func claimsUserID(r *http.Request) string {
	claims := models.ClaimsFromContext(r.Context())
	if claims == nil {
		return ""
	}
	return claims.UserID
}
