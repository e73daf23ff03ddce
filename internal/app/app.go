package app

import (
	"log/slog"

	"baseserver/internal/config"
	"baseserver/internal/registry"
	authservice "baseserver/internal/services/auth"
	fileservice "baseserver/internal/services/files"
	tableservice "baseserver/internal/services/table"
	userservice "baseserver/internal/services/user"
)

// App owns the project registry and the services wired on top of it.
type App struct {
	Registry     *registry.Registry
	AuthService  *authservice.AuthService
	TableService *tableservice.TableService
	UserService  *userservice.UserService
	FileService  *fileservice.FileService
}

func NewApp(log *slog.Logger, cfg *config.Config) *App {
	reg := registry.New(log, cfg.ProjectsDir)

	return &App{
		Registry:     reg,
		AuthService:  authservice.New(log, reg, cfg.Auth),
		TableService: tableservice.New(log, reg),
		UserService:  userservice.New(log, reg, cfg.Auth.BcryptCost),
		FileService:  fileservice.New(log, reg),
	}
}

// Close releases every open collection handle.
func (a *App) Close() error {
	return a.Registry.Close()
}
