package tableservice

import "baseserver/internal/storage/collection"

// ProjectResolver is the slice of the project registry this service
// needs.
type ProjectResolver interface {
	Collection(project, table string) (*collection.Store, error)
	CreateFolderMarker(project, table string) error
}
