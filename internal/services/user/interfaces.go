package userservice

import "baseserver/internal/storage/collection"

type ProjectResolver interface {
	Collection(project, table string) (*collection.Store, error)
}
