package models

// Document is one schemaless record of a collection. The store assigns
// the system fields on write; everything else is caller data.
type Document map[string]any

const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Clone returns a shallow copy, so stores can attach system fields
// without mutating the caller's map.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	out := make(Document, len(d)+2)
	for k, v := range d {
		out[k] = v
	}
	return out
}
