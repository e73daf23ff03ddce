package tables

import (
	"context"
	"net/url"

	"baseserver/internal/models"
)

const pkg = "handlers/tables/"

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
