// Package fileservice stores uploaded files on disk under each
// project's uploads directory. Stored names are prefixed with the
// upload time in unix milliseconds to keep them unique.
package fileservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"baseserver/internal/models"
)

const pkg = "fileService/"

type FileService struct {
	log      *slog.Logger
	projects UploadsResolver
}

func New(log *slog.Logger, projects UploadsResolver) *FileService {
	return &FileService{log: log, projects: projects}
}

// path resolves a stored filename inside the project's uploads
// directory. Only the base name is used, so names cannot escape it.
func (f *FileService) path(project, filename string) (string, error) {
	dir, err := f.projects.UploadsDir(project)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(filename)), nil
}

// Save writes one uploaded file and returns its stored name and size.
func (f *FileService) Save(ctx context.Context, project, originalName string, content io.Reader) (string, int64, error) {
	op := pkg + "Save"

	log := f.log.With(slog.String("op", op), slog.String("project", project))

	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	stored := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(originalName))

	path, err := f.path(project, stored)
	if err != nil {
		return "", 0, err
	}

	dst, err := os.Create(path)
	if err != nil {
		log.Error("failed to create file", slog.String("error", err.Error()))
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	size, err := io.Copy(dst, content)
	if err != nil {
		dst.Close()
		os.Remove(path)
		log.Error("failed to write file", slog.String("error", err.Error()))
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := dst.Close(); err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("file stored", slog.String("filename", stored), slog.Int64("size", size))

	return stored, size, nil
}

// List returns the project's stored filenames, sorted. A project with
// no uploads yet lists as empty.
func (f *FileService) List(ctx context.Context, project string) ([]string, error) {
	op := pkg + "List"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := f.projects.UploadsDir(project)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

// Open returns a reader over a stored file plus its size, or
// ErrFileNotFound.
func (f *FileService) Open(ctx context.Context, project, filename string) (io.ReadCloser, int64, error) {
	op := pkg + "Open"

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	path, err := f.path(project, filename)
	if err != nil {
		return nil, 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, models.ErrFileNotFound
		}
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return file, info.Size(), nil
}

// Delete removes a stored file, or ErrFileNotFound.
func (f *FileService) Delete(ctx context.Context, project, filename string) error {
	op := pkg + "Delete"

	log := f.log.With(slog.String("op", op), slog.String("project", project))

	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(project, filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ErrFileNotFound
		}
		log.Error("failed to delete file", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("file deleted", slog.String("filename", filepath.Base(filename)))

	return nil
}
