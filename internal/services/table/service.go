// Package tableservice implements the generic table CRUD contract on
// top of the query compiler and the per-project collection stores.
package tableservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"baseserver/internal/models"
	"baseserver/internal/query"
	"baseserver/internal/storage/collection"
	"baseserver/internal/validation"
)

const pkg = "tableService/"

type TableService struct {
	log      *slog.Logger
	projects ProjectResolver
}

func New(log *slog.Logger, projects ProjectResolver) *TableService {
	return &TableService{log: log, projects: projects}
}

// store resolves the collection behind (project, table), refusing
// reserved names so _users stays unreachable from the tables surface.
func (s *TableService) store(project, table string) (*collection.Store, error) {
	if table == "" || strings.HasPrefix(table, "_") {
		return nil, models.ErrInvalidTable
	}
	return s.projects.Collection(project, table)
}

// List compiles the query-string filter and returns one page of
// matching documents plus the total match count.
func (s *TableService) List(ctx context.Context, project, table string, params url.Values) ([]models.Document, int, error) {
	op := pkg + "List"

	store, err := s.store(project, table)
	if err != nil {
		return nil, 0, err
	}

	filter, opts := query.ParseValues(params)

	docs, total, err := store.Find(ctx, filter, collection.FindOptions{
		Sort:  opts.Sort,
		Desc:  opts.Desc,
		Skip:  opts.Skip(),
		Limit: opts.Limit,
	})
	if err != nil {
		s.log.Error("failed to list documents", slog.String("op", op), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return docs, total, nil
}

// Get returns a single document by id.
func (s *TableService) Get(ctx context.Context, project, table, id string) (models.Document, error) {
	store, err := s.store(project, table)
	if err != nil {
		return nil, err
	}
	return store.FindByID(ctx, id)
}

// Create validates and inserts one document.
func (s *TableService) Create(ctx context.Context, project, table string, doc models.Document) (models.Document, error) {
	op := pkg + "Create"

	log := s.log.With(slog.String("op", op), slog.String("project", project), slog.String("table", table))

	store, err := s.store(project, table)
	if err != nil {
		return nil, err
	}

	if err := validation.TableDocument(doc); err != nil {
		log.Warn("document failed validation", slog.String("error", err.Error()))
		return nil, err
	}

	stored, err := store.Insert(ctx, doc)
	if err != nil {
		log.Error("failed to insert document", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("document created", slog.String("id", stored.ID()))

	return stored, nil
}

// BulkCreate validates every document before inserting any, so a batch
// with an invalid member is rejected wholesale with no side effects.
// A storage failure mid-batch leaves the earlier inserts committed.
func (s *TableService) BulkCreate(ctx context.Context, project, table string, docs []models.Document) ([]models.Document, error) {
	op := pkg + "BulkCreate"

	log := s.log.With(slog.String("op", op), slog.String("project", project), slog.String("table", table))

	store, err := s.store(project, table)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, models.NewValidationError("documents", "at least one document required")
	}

	for i, doc := range docs {
		if err := validation.TableDocument(doc); err != nil {
			log.Warn("bulk document failed validation", slog.Int("index", i), slog.String("error", err.Error()))
			return nil, models.NewValidationError(fmt.Sprintf("documents[%d]", i), err.Error())
		}
	}

	stored := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		inserted, err := store.Insert(ctx, doc)
		if err != nil {
			log.Error("failed to insert bulk document", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stored = append(stored, inserted)
	}

	log.Debug("bulk insert complete", slog.Int("count", len(stored)))

	return stored, nil
}

// Replace validates the body against the create schema and replaces
// the document with the given id.
func (s *TableService) Replace(ctx context.Context, project, table, id string, doc models.Document) (int, error) {
	store, err := s.store(project, table)
	if err != nil {
		return 0, err
	}

	if err := validation.TableDocument(doc); err != nil {
		return 0, err
	}

	if err := store.ReplaceOne(ctx, id, doc); err != nil {
		return 0, err
	}
	return 1, nil
}

// Patch applies a partial update to every document matching the
// query-string filter. Pagination parameters do not apply; the whole
// matching set is patched.
func (s *TableService) Patch(ctx context.Context, project, table string, params url.Values, patch models.Document) (int, error) {
	store, err := s.store(project, table)
	if err != nil {
		return 0, err
	}

	if err := validation.TablePatch(patch); err != nil {
		return 0, err
	}

	filter, _ := query.ParseValues(params)
	return store.UpdateMany(ctx, filter, patch)
}

// DeleteByID removes one document; ErrNotFound when absent.
func (s *TableService) DeleteByID(ctx context.Context, project, table, id string) error {
	store, err := s.store(project, table)
	if err != nil {
		return err
	}
	return store.RemoveOne(ctx, id)
}

// DeleteByFilter removes every matching document and reports the
// count; zero is success.
func (s *TableService) DeleteByFilter(ctx context.Context, project, table string, params url.Values) (int, error) {
	store, err := s.store(project, table)
	if err != nil {
		return 0, err
	}

	filter, _ := query.ParseValues(params)
	return store.RemoveMany(ctx, filter)
}

// Count evaluates a raw filter object posted in a request body, which
// may carry operator objects per field.
func (s *TableService) Count(ctx context.Context, project, table string, body map[string]any) (int, error) {
	store, err := s.store(project, table)
	if err != nil {
		return 0, err
	}
	return store.Count(ctx, query.ParseBody(body))
}

// CreateFolder materializes the folder marker for a table name.
func (s *TableService) CreateFolder(project, table string) error {
	if table == "" || strings.HasPrefix(table, "_") {
		return models.ErrInvalidTable
	}
	return s.projects.CreateFolderMarker(project, table)
}
