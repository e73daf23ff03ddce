// Package collection implements the file-backed document store. One
// Store wraps a single bolt file holding one schemaless collection;
// bolt serializes writers per file, which is the only write ordering
// guarantee the system relies on.
package collection

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"baseserver/internal/models"
	"baseserver/internal/query"
)

var (
	bucketDocs = []byte("docs")
	bucketIDs  = []byte("ids")
)

// Store is a single collection backed by one bolt file. Documents live
// in the docs bucket under an 8-byte insertion sequence, so iteration
// order is insertion order; the ids bucket maps _id to that sequence.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketDocs); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketIDs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init collection %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// FindOptions control sorting and pagination of Find. A Limit of zero
// or less means no limit.
type FindOptions struct {
	Sort  string
	Desc  bool
	Skip  int
	Limit int
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func encodeDoc(doc models.Document) ([]byte, error) {
	return msgpack.Marshal(map[string]any(doc))
}

func decodeDoc(raw []byte) (models.Document, error) {
	var doc map[string]any
	if err := msgpack.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return models.Document(doc), nil
}

// Insert stores doc with a fresh _id and createdAt and returns the
// stored form.
func (s *Store) Insert(ctx context.Context, doc models.Document) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := doc.Clone()
	stored[models.FieldID] = uuid.NewV4().String()
	stored[models.FieldCreatedAt] = time.Now().UTC().Format(time.RFC3339)

	raw, err := encodeDoc(stored)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		seq, err := docs.NextSequence()
		if err != nil {
			return err
		}
		key := seqKey(seq)
		if err := docs.Put(key, raw); err != nil {
			return err
		}
		return tx.Bucket(bucketIDs).Put([]byte(stored.ID()), key)
	})
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return stored, nil
}

// FindByID returns the document with the given _id, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc models.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(bucketIDs).Get([]byte(id))
		if key == nil {
			return models.ErrNotFound
		}
		raw := tx.Bucket(bucketDocs).Get(key)
		if raw == nil {
			return models.ErrNotFound
		}
		var err error
		doc, err = decodeDoc(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindOne returns the first document matching filter in insertion
// order, or ErrNotFound.
func (s *Store) FindOne(ctx context.Context, filter query.Filter) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found models.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDocs).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			doc, err := decodeDoc(v)
			if err != nil {
				return err
			}
			if filter.Matches(doc) {
				found = doc
				return nil
			}
		}
		return models.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Find returns one page of matching documents plus the total match
// count. Both come from a single scan, with the count taken before
// the page is sliced, so they always agree for one filter.
func (s *Store) Find(ctx context.Context, filter query.Filter, opts FindOptions) ([]models.Document, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	matches, err := s.scan(filter)
	if err != nil {
		return nil, 0, err
	}

	if opts.Sort != "" {
		sortDocs(matches, opts.Sort, opts.Desc)
	}

	total := len(matches)

	if opts.Skip > 0 {
		if opts.Skip >= len(matches) {
			matches = nil
		} else {
			matches = matches[opts.Skip:]
		}
	}
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	if matches == nil {
		matches = []models.Document{}
	}
	return matches, total, nil
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, filter query.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	matches, err := s.scan(filter)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (s *Store) scan(filter query.Filter) ([]models.Document, error) {
	var matches []models.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDocs).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			doc, err := decodeDoc(v)
			if err != nil {
				return err
			}
			if filter.Matches(doc) {
				matches = append(matches, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan collection: %w", err)
	}
	return matches, nil
}
