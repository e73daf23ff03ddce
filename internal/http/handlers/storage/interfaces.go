package storage

import (
	"context"
	"io"
)

const pkg = "handlers/storage/"

type FileService interface {
	Save(ctx context.Context, project, originalName string, content io.Reader) (string, int64, error)
	List(ctx context.Context, project string) ([]string, error)
	Open(ctx context.Context, project, filename string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, project, filename string) error
}
