package server

import (
	"context"
	"io"
	"net/url"

	"baseserver/internal/models"
)

type AuthService interface {
	Register(ctx context.Context, project, email, password string) (models.Document, error)
	Login(ctx context.Context, project, email, password string, remember bool) (string, error)
	VerifyToken(project, token string) (*models.Claims, error)
}

type TableService interface {
	List(ctx context.Context, project, table string, params url.Values) ([]models.Document, int, error)
	Get(ctx context.Context, project, table, id string) (models.Document, error)
	Create(ctx context.Context, project, table string, doc models.Document) (models.Document, error)
	BulkCreate(ctx context.Context, project, table string, docs []models.Document) ([]models.Document, error)
	Replace(ctx context.Context, project, table, id string, doc models.Document) (int, error)
	Patch(ctx context.Context, project, table string, params url.Values, patch models.Document) (int, error)
	DeleteByID(ctx context.Context, project, table, id string) error
	DeleteByFilter(ctx context.Context, project, table string, params url.Values) (int, error)
	Count(ctx context.Context, project, table string, body map[string]any) (int, error)
	CreateFolder(project, table string) error
}

type UserService interface {
	UserByID(ctx context.Context, project, id string) (models.Document, error)
	Update(ctx context.Context, project, id, email, password string) error
	Delete(ctx context.Context, project, id string) error
}

type FileService interface {
	Save(ctx context.Context, project, originalName string, content io.Reader) (string, int64, error)
	List(ctx context.Context, project string) ([]string, error)
	Open(ctx context.Context, project, filename string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, project, filename string) error
}
