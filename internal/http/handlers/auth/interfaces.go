package auth

import (
	"context"

	"baseserver/internal/models"
)

const pkg = "handlers/auth/"

type Registerer interface {
	Register(ctx context.Context, project, email, password string) (models.Document, error)
}

type LoginService interface {
	Login(ctx context.Context, project, email, password string, remember bool) (string, error)
}
