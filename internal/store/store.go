package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
)

// Config selects the database that backs the document store.
type Config struct {
	Driver          string // sqlite (default), postgres, mysql or sqlserver
	DSN             string // connection string for the server backends
	DataDir         string // sqlite only; empty means in-memory
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Document is one node of the content tree: a JSON body addressed by a
// collection path and a key, plus the timestamps the store maintains itself.
type Document struct {
	Path      string
	Key       string
	Body      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time // zero until the first write after creation
}

// documentRow maps 1:1 to the documents table. Timestamps are stored as Unix
// milliseconds so every backend scans them the same way.
type documentRow struct {
	Path      string        `db:"path"`
	Key       string        `db:"doc_key"`
	Body      string        `db:"body"`
	CreatedAt int64         `db:"created_at"`
	UpdatedAt sql.NullInt64 `db:"updated_at"`
}

func (r documentRow) toDocument() Document {
	doc := Document{
		Path:      r.Path,
		Key:       r.Key,
		Body:      json.RawMessage(r.Body),
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
	if r.UpdatedAt.Valid {
		doc.UpdatedAt = time.UnixMilli(r.UpdatedAt.Int64).UTC()
	}
	return doc
}

// Store is a path-addressed document store on top of a SQL database. It
// offers the get/set/push/update/remove primitives the content collections
// are built from. There is no locking beyond what the database does for a
// single statement: concurrent writers to the same key race and the last
// write wins.
type Store struct {
	db      *sqlx.DB
	dialect dialect
	keys    *keyGenerator
	now     func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces the wall clock used to stamp createdAt/updatedAt and to
// seed generated keys.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open connects to the configured database and applies the schema.
func Open(cfg Config, opts ...Option) (*Store, error) {
	d, err := lookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if d.name == "sqlite" {
		if cfg.DataDir == "" {
			dsn = ":memory:?_journal_mode=WAL"
		} else {
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
			dsn = filepath.Join(cfg.DataDir, "folio.db") + "?_journal_mode=WAL&_busy_timeout=5000"
		}
	} else if dsn == "" {
		return nil, fmt.Errorf("%s store requires a DSN", d.name)
	}

	db, err := sqlx.Connect(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s document store: %w", d.name, err)
	}

	if d.name == "sqlite" {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	s := &Store{
		db:      db,
		dialect: d,
		keys:    newKeyGenerator(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate document store: %w", err)
	}
	return s, nil
}

// NewMemory opens an in-memory SQLite store. Used by tests and by
// `folio serve --dev` when no data directory is configured.
func NewMemory(opts ...Option) (*Store, error) {
	return Open(Config{Driver: "sqlite"}, opts...)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the normalised backend name (sqlite, postgres, mysql or sqlserver).
func (s *Store) Driver() string {
	return s.dialect.name
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// List returns every document under path in key order. A path with no
// documents yields an empty slice, not an error.
func (s *Store) List(ctx context.Context, path string) ([]Document, error) {
	var rows []documentRow
	q := s.db.Rebind("SELECT path, doc_key, body, created_at, updated_at FROM documents WHERE path = ? ORDER BY doc_key")
	if err := s.db.SelectContext(ctx, &rows, q, path); err != nil {
		return nil, unavailable("list "+path, err)
	}

	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = r.toDocument()
	}
	return docs, nil
}

// Get returns the document at path/key or ErrNotFound.
func (s *Store) Get(ctx context.Context, path, key string) (*Document, error) {
	return s.get(ctx, s.db, path, key)
}

func (s *Store) get(ctx context.Context, q sqlx.QueryerContext, path, key string) (*Document, error) {
	var row documentRow
	query := s.db.Rebind("SELECT path, doc_key, body, created_at, updated_at FROM documents WHERE path = ? AND doc_key = ?")
	if err := sqlx.GetContext(ctx, q, &row, query, path, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get "+path+"/"+key, err)
	}
	doc := row.toDocument()
	return &doc, nil
}

// Push stores body under a freshly generated key and stamps createdAt.
func (s *Store) Push(ctx context.Context, path string, body json.RawMessage) (*Document, error) {
	now := s.now().UTC()
	key := s.keys.NewAt(now)

	q := s.db.Rebind("INSERT INTO documents (path, doc_key, body, created_at) VALUES (?, ?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, q, path, key, string(body), now.UnixMilli()); err != nil {
		return nil, unavailable("push "+path, err)
	}

	return &Document{
		Path:      path,
		Key:       key,
		Body:      body,
		CreatedAt: time.UnixMilli(now.UnixMilli()).UTC(),
	}, nil
}

// Set replaces the whole body at path/key and stamps updatedAt. A missing
// document is created, with createdAt set to the same instant. createdAt of
// an existing document is never touched. The returned document is read back
// in the same transaction as the write.
func (s *Store) Set(ctx context.Context, path, key string, body json.RawMessage) (*Document, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin set", err)
	}
	defer tx.Rollback() //nolint:errcheck

	doc, err := s.upsert(ctx, tx, path, key, body)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit set", err)
	}
	return doc, nil
}

// upsert writes body at path/key and reads the row back through tx.
func (s *Store) upsert(ctx context.Context, tx *sqlx.Tx, path, key string, body json.RawMessage) (*Document, error) {
	now := s.now().UnixMilli()
	if _, err := tx.ExecContext(ctx, s.db.Rebind(s.dialect.upsert), path, key, string(body), now, now); err != nil {
		return nil, unavailable("set "+path+"/"+key, err)
	}
	return s.get(ctx, tx, path, key)
}

// Update merges the top-level fields of patch into the body at path/key,
// creating the document if needed, and stamps updatedAt. Fields absent from
// patch keep their stored value.
func (s *Store) Update(ctx context.Context, path, key string, patch map[string]json.RawMessage) (*Document, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin update", err)
	}
	defer tx.Rollback() //nolint:errcheck

	fields := make(map[string]json.RawMessage)
	existing, err := s.get(ctx, tx, path, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(existing.Body, &fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", path, key, err)
		}
	case errors.Is(err, ErrNotFound):
	default:
		return nil, err
	}

	for k, v := range patch {
		fields[k] = v
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", path, key, err)
	}

	doc, err := s.upsert(ctx, tx, path, key, body)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit update", err)
	}
	return doc, nil
}

// Remove deletes the document at path/key. Removing a document that does not
// exist is not an error.
func (s *Store) Remove(ctx context.Context, path, key string) error {
	q := s.db.Rebind("DELETE FROM documents WHERE path = ? AND doc_key = ?")
	if _, err := s.db.ExecContext(ctx, q, path, key); err != nil {
		return unavailable("remove "+path+"/"+key, err)
	}
	return nil
}
