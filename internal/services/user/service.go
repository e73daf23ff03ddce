// Package userservice implements profile operations on a project's
// reserved users collection. The same methods back the self-service
// routes (id taken from token claims) and the admin by-id routes.
package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"baseserver/internal/models"
	"baseserver/internal/query"
	"baseserver/internal/validation"
)

const pkg = "userService/"

type UserService struct {
	log        *slog.Logger
	projects   ProjectResolver
	bcryptCost int
}

func New(log *slog.Logger, projects ProjectResolver, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{log: log, projects: projects, bcryptCost: bcryptCost}
}

// UserByID returns a user document without its password hash.
func (u *UserService) UserByID(ctx context.Context, project, id string) (models.Document, error) {
	op := pkg + "UserByID"

	log := u.log.With(slog.String("op", op), slog.String("project", project))

	users, err := u.projects.Collection(project, models.UsersTable)
	if err != nil {
		return nil, err
	}

	user, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("user not found")
			return nil, models.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return models.Sanitize(user), nil
}

// Update changes a user's email and/or password. A password change is
// re-hashed; an email change colliding with another user is a
// conflict.
func (u *UserService) Update(ctx context.Context, project, id, email, password string) error {
	op := pkg + "Update"

	log := u.log.With(slog.String("op", op), slog.String("project", project))

	if err := validation.UpdateUserInput(email, password); err != nil {
		log.Warn("invalid update input", slog.String("error", err.Error()))
		return err
	}

	users, err := u.projects.Collection(project, models.UsersTable)
	if err != nil {
		return err
	}

	user, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("user not found")
			return models.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	if email != "" && email != user[models.UserFieldEmail] {
		_, err := users.FindOne(ctx, query.Eq(models.UserFieldEmail, email))
		if err == nil {
			log.Warn("email already taken")
			return models.ErrUserExists
		}
		if !errors.Is(err, models.ErrNotFound) {
			log.Error("failed to check email", slog.String("error", err.Error()))
			return fmt.Errorf("%s: %w", op, err)
		}
		user[models.UserFieldEmail] = email
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return models.ErrInternal
		}
		user[models.UserFieldPassword] = string(hash)
	}

	if err := users.ReplaceOne(ctx, id, user); err != nil {
		log.Error("failed to update user", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("user updated")

	return nil
}

// Delete removes a user record.
func (u *UserService) Delete(ctx context.Context, project, id string) error {
	op := pkg + "Delete"

	log := u.log.With(slog.String("op", op), slog.String("project", project))

	users, err := u.projects.Collection(project, models.UsersTable)
	if err != nil {
		return err
	}

	if err := users.RemoveOne(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("user not found")
			return models.ErrUserNotFound
		}
		log.Error("failed to delete user", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("user deleted")

	return nil
}
