package users

import (
	"context"

	"baseserver/internal/models"
)

const pkg = "handlers/users/"

type UserService interface {
	UserByID(ctx context.Context, project, id string) (models.Document, error)
	Update(ctx context.Context, project, id, email, password string) error
	Delete(ctx context.Context, project, id string) error
}
