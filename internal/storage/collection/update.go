package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"baseserver/internal/models"
	"baseserver/internal/query"
)

// ReplaceOne replaces the document with the given _id. The system
// fields _id and createdAt are carried over from the stored document
// and updatedAt is set. Returns ErrNotFound when the id is absent.
func (s *Store) ReplaceOne(ctx context.Context, id string, doc models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		key := tx.Bucket(bucketIDs).Get([]byte(id))
		if key == nil {
			return models.ErrNotFound
		}

		docs := tx.Bucket(bucketDocs)
		existing, err := decodeDoc(docs.Get(key))
		if err != nil {
			return err
		}

		replacement := doc.Clone()
		replacement[models.FieldID] = existing[models.FieldID]
		replacement[models.FieldCreatedAt] = existing[models.FieldCreatedAt]
		replacement[models.FieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)

		raw, err := encodeDoc(replacement)
		if err != nil {
			return err
		}
		return docs.Put(key, raw)
	})
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// UpdateMany shallow-merges patch into every document matching filter
// and reports the number modified. Zero matches is not an error. The
// _id and createdAt fields cannot be patched.
func (s *Store) UpdateMany(ctx context.Context, filter query.Filter, patch models.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	modified := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketDocs)

		type pending struct {
			key []byte
			raw []byte
		}
		var updates []pending

		c := docs.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			doc, err := decodeDoc(v)
			if err != nil {
				return err
			}
			if !filter.Matches(doc) {
				continue
			}

			for field, value := range patch {
				if field == models.FieldID || field == models.FieldCreatedAt {
					continue
				}
				doc[field] = value
			}
			doc[models.FieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)

			raw, err := encodeDoc(doc)
			if err != nil {
				return err
			}
			key := make([]byte, len(k))
			copy(key, k)
			updates = append(updates, pending{key: key, raw: raw})
		}

		for _, u := range updates {
			if err := docs.Put(u.key, u.raw); err != nil {
				return err
			}
		}
		modified = len(updates)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("update documents: %w", err)
	}
	return modified, nil
}

// RemoveOne deletes the document with the given _id, or ErrNotFound.
func (s *Store) RemoveOne(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(bucketIDs)
		key := ids.Get([]byte(id))
		if key == nil {
			return models.ErrNotFound
		}
		if err := tx.Bucket(bucketDocs).Delete(key); err != nil {
			return err
		}
		return ids.Delete([]byte(id))
	})
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

// RemoveMany deletes every document matching filter and reports the
// number removed. Zero matches is not an error.
func (s *Store) RemoveMany(ctx context.Context, filter query.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		ids := tx.Bucket(bucketIDs)

		type victim struct {
			key []byte
			id  string
		}
		var victims []victim

		c := docs.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			doc, err := decodeDoc(v)
			if err != nil {
				return err
			}
			if !filter.Matches(doc) {
				continue
			}
			key := make([]byte, len(k))
			copy(key, k)
			victims = append(victims, victim{key: key, id: doc.ID()})
		}

		for _, v := range victims {
			if err := docs.Delete(v.key); err != nil {
				return err
			}
			if err := ids.Delete([]byte(v.id)); err != nil {
				return err
			}
		}
		removed = len(victims)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("remove documents: %w", err)
	}
	return removed, nil
}

func sortDocs(docs []models.Document, field string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		cmp := query.Compare(docs[i][field], docs[j][field])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
