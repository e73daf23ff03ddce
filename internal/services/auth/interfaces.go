package authservice

import "baseserver/internal/storage/collection"

// ProjectResolver is the slice of the project registry this service
// needs: the per-project user collection and signing secret.
type ProjectResolver interface {
	Collection(project, table string) (*collection.Store, error)
	Secret(project string) ([]byte, error)
}
