package content

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/store"
)

// DocumentStore is the subset of *store.Store the repositories need.
type DocumentStore interface {
	List(ctx context.Context, path string) ([]store.Document, error)
	Get(ctx context.Context, path, key string) (*store.Document, error)
	Push(ctx context.Context, path string, body json.RawMessage) (*store.Document, error)
	Set(ctx context.Context, path, key string, body json.RawMessage) (*store.Document, error)
	Update(ctx context.Context, path, key string, patch map[string]json.RawMessage) (*store.Document, error)
	Remove(ctx context.Context, path, key string) error
}

// Record is satisfied by pointers to the model types that embed model.Meta.
type Record[T any] interface {
	*T
	Metadata() *model.Meta
}

// Repository implements list/create/update/delete for one Collection. The
// id and timestamps of a record live in the store row, never in its body.
type Repository[T any, P Record[T]] struct {
	coll  Collection[T]
	store DocumentStore
}

// NewRepository binds a collection to a store.
func NewRepository[T any, P Record[T]](coll Collection[T], s DocumentStore) *Repository[T, P] {
	return &Repository[T, P]{coll: coll, store: s}
}

// Collection returns the descriptor the repository was built with.
func (r *Repository[T, P]) Collection() Collection[T] {
	return r.coll
}

// List returns every record in the collection order. An empty collection
// yields an empty, non-nil slice.
func (r *Repository[T, P]) List(ctx context.Context) ([]T, error) {
	docs, err := r.store.List(ctx, r.coll.Path)
	if err != nil {
		return nil, storeError("list "+r.coll.Path, err)
	}

	recs := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := r.decode(&doc)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if r.coll.Order != Unordered {
		slices.SortStableFunc(recs, func(a, b T) int {
			ma, mb := P(&a).Metadata(), P(&b).Metadata()
			c := cmp.Or(cmp.Compare(ma.CreatedAt, mb.CreatedAt), cmp.Compare(ma.ID, mb.ID))
			if r.coll.Order == NewestFirst {
				return -c
			}
			return c
		})
	}
	return recs, nil
}

// Get returns the record with the given id, or store.ErrNotFound.
func (r *Repository[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := r.store.Get(ctx, r.coll.Path, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return zero, fmt.Errorf("%s %q: %w", r.coll.Name, id, store.ErrNotFound)
		}
		return zero, storeError("get "+r.coll.Name, err)
	}
	return r.decode(doc)
}

// Create validates rec and appends it under a store-generated id. Any id or
// timestamps set by the caller are ignored.
func (r *Repository[T, P]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := r.validate(&rec, OpCreate); err != nil {
		return zero, err
	}

	body, err := encode[T, P](rec)
	if err != nil {
		return zero, err
	}
	doc, err := r.store.Push(ctx, r.coll.Path, body)
	if err != nil {
		return zero, storeError("create "+r.coll.Name, err)
	}
	return r.decode(doc)
}

// Update replaces the stored body of rec with rec's fields. The id is
// required; a record that does not exist yet is created under it. createdAt
// keeps the value from the first write.
func (r *Repository[T, P]) Update(ctx context.Context, rec T) (T, error) {
	var zero T
	id := P(&rec).Metadata().ID
	if id == "" {
		return zero, &ValidationError{Field: "id", Message: "is required"}
	}
	if err := r.validate(&rec, OpUpdate); err != nil {
		return zero, err
	}

	body, err := encode[T, P](rec)
	if err != nil {
		return zero, err
	}
	doc, err := r.store.Set(ctx, r.coll.Path, id, body)
	if err != nil {
		return zero, storeError("update "+r.coll.Name, err)
	}
	return r.decode(doc)
}

// Delete removes the record with the given id. Deleting an id that does not
// exist succeeds. References to the record from other collections are left
// as they are.
func (r *Repository[T, P]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}
	if err := r.store.Remove(ctx, r.coll.Path, id); err != nil {
		return storeError("delete "+r.coll.Name, err)
	}
	return nil
}

func (r *Repository[T, P]) validate(rec *T, op Op) error {
	if r.coll.Validate == nil {
		return nil
	}
	return r.coll.Validate(rec, op)
}

func (r *Repository[T, P]) decode(doc *store.Document) (T, error) {
	var rec T
	if err := json.Unmarshal(doc.Body, &rec); err != nil {
		return rec, fmt.Errorf("decode %s %s: %w", r.coll.Name, doc.Key, err)
	}
	setMeta(P(&rec).Metadata(), doc)
	return rec, nil
}

// encode marshals rec without its Meta so bodies never carry server fields.
func encode[T any, P Record[T]](rec T) (json.RawMessage, error) {
	*P(&rec).Metadata() = model.Meta{}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return body, nil
}

func setMeta(m *model.Meta, doc *store.Document) {
	m.ID = doc.Key
	m.CreatedAt = millis(doc.CreatedAt)
	m.UpdatedAt = millis(doc.UpdatedAt)
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// storeError makes sure every failure from the backing store classifies as
// store.ErrUnavailable.
func storeError(op string, err error) error {
	if errors.Is(err, store.ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
}
