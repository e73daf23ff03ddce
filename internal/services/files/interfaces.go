package fileservice

type UploadsResolver interface {
	UploadsDir(project string) (string, error)
}
