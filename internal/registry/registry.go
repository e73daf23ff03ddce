// Package registry maps project names to their isolated resources: a
// directory, lazily opened collection stores and a persisted signing
// secret. One Registry is owned by the application root and shared by
// every request handler.
package registry

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"baseserver/internal/models"
	"baseserver/internal/storage/collection"
)

const pkg = "registry/"

const secretFile = "secret.key"

type Registry struct {
	log     *slog.Logger
	baseDir string
	rand    io.Reader

	mu      sync.RWMutex
	stores  map[string]map[string]*collection.Store
	secrets map[string][]byte
}

func New(log *slog.Logger, baseDir string) *Registry {
	return NewWithRand(log, baseDir, rand.Reader)
}

// NewWithRand lets tests supply the random source used for secret
// generation. Production callers use New.
func NewWithRand(log *slog.Logger, baseDir string, src io.Reader) *Registry {
	return &Registry{
		log:     log,
		baseDir: baseDir,
		rand:    src,
		stores:  make(map[string]map[string]*collection.Store),
		secrets: make(map[string][]byte),
	}
}

// validateComponent guards names that become filesystem path
// components: project names and table names.
func validateComponent(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return !strings.Contains(name, "..")
}

func (r *Registry) projectDir(project string) (string, error) {
	if !validateComponent(project) {
		return "", models.ErrInvalidProject
	}
	return filepath.Join(r.baseDir, project), nil
}

// ensureProject creates the project directory on first reference.
func (r *Registry) ensureProject(project string) (string, error) {
	dir, err := r.projectDir(project)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}
	return dir, nil
}

// Collection returns the store for (project, table), opening the
// backing file on first reference and caching the handle for the
// process lifetime.
func (r *Registry) Collection(project, table string) (*collection.Store, error) {
	op := pkg + "Collection"

	if !validateComponent(table) {
		return nil, models.ErrInvalidTable
	}

	r.mu.RLock()
	if store, ok := r.stores[project][table]; ok {
		r.mu.RUnlock()
		return store, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[project][table]; ok {
		return store, nil
	}

	dir, err := r.ensureProject(project)
	if err != nil {
		return nil, err
	}

	store, err := collection.Open(filepath.Join(dir, table+".db"))
	if err != nil {
		r.log.Error("failed to open collection",
			slog.String("op", op),
			slog.String("project", project),
			slog.String("table", table),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if r.stores[project] == nil {
		r.stores[project] = make(map[string]*collection.Store)
	}
	r.stores[project][table] = store

	return store, nil
}

// Secret returns the project's signing secret, generating and
// persisting it on the very first access. The persisted hex form is
// what gets used as key material, so restarts keep issued tokens
// verifiable.
func (r *Registry) Secret(project string) ([]byte, error) {
	op := pkg + "Secret"

	r.mu.RLock()
	if secret, ok := r.secrets[project]; ok {
		r.mu.RUnlock()
		return secret, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if secret, ok := r.secrets[project]; ok {
		return secret, nil
	}

	dir, err := r.ensureProject(project)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, secretFile)

	raw, err := os.ReadFile(path)
	if err == nil {
		secret := []byte(strings.TrimSpace(string(raw)))
		r.secrets[project] = secret
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seed := make([]byte, 32)
	if _, err := io.ReadFull(r.rand, seed); err != nil {
		return nil, fmt.Errorf("%s: generate secret: %w", op, err)
	}
	secret := []byte(hex.EncodeToString(seed))

	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("%s: persist secret: %w", op, err)
	}

	r.log.Debug("generated project secret", slog.String("op", op), slog.String("project", project))

	r.secrets[project] = secret
	return secret, nil
}

// CreateFolderMarker materializes an empty marker file for a table
// name. No document-level effect.
func (r *Registry) CreateFolderMarker(project, table string) error {
	if !validateComponent(table) {
		return models.ErrInvalidTable
	}

	dir, err := r.ensureProject(project)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, table+".folder"), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create folder marker: %w", err)
	}
	return f.Close()
}

// UploadsDir returns the project's uploads directory, creating it if
// needed.
func (r *Registry) UploadsDir(project string) (string, error) {
	dir, err := r.ensureProject(project)
	if err != nil {
		return "", err
	}
	uploads := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(uploads, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	return uploads, nil
}

// Close closes every cached collection handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for project, tables := range r.stores {
		for table, store := range tables {
			if err := store.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close %s/%s: %w", project, table, err)
			}
		}
	}
	r.stores = make(map[string]map[string]*collection.Store)
	return firstErr
}
