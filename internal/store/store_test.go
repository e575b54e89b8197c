package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"
)

// steppingClock returns the given instants in order, repeating the last one.
type steppingClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := NewMemory(opts...)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestListEmptyPath(t *testing.T) {
	s := newTestStore(t)

	docs, err := s.List(context.Background(), "projects")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", docs)
	}
}

func TestPushGetRemove(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return created }))
	ctx := context.Background()

	doc, err := s.Push(ctx, "categories", json.RawMessage(`{"name":"Web"}`))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := ulid.ParseStrict(doc.Key); err != nil {
		t.Errorf("generated key %q is not a ULID: %v", doc.Key, err)
	}
	if !doc.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt: got %v, want %v", doc.CreatedAt, created)
	}

	got, err := s.Get(ctx, "categories", doc.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Body) != `{"name":"Web"}` {
		t.Errorf("Body: got %s", got.Body)
	}
	if !got.UpdatedAt.IsZero() {
		t.Errorf("expected zero UpdatedAt on fresh document, got %v", got.UpdatedAt)
	}

	if err := s.Remove(ctx, "categories", doc.Key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "categories", doc.Key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Push(ctx, "skills", json.RawMessage(`{"name":"Go"}`)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := s.Remove(ctx, "skills", "does-not-exist"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	docs, _ := s.List(ctx, "skills")
	if len(docs) != 1 {
		t.Errorf("got %d documents, want 1", len(docs))
	}
}

func TestSetReplacesBodyAndKeepsCreatedAt(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	clock := &steppingClock{times: []time.Time{t0, t1}}
	s := newTestStore(t, WithClock(clock.Now))
	ctx := context.Background()

	doc, err := s.Push(ctx, "projects", json.RawMessage(`{"title":"X","description":"long"}`))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	updated, err := s.Set(ctx, "projects", doc.Key, json.RawMessage(`{"title":"Y"}`))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if string(updated.Body) != `{"title":"Y"}` {
		t.Errorf("expected full replace, got %s", updated.Body)
	}
	if !updated.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt changed: got %v, want %v", updated.CreatedAt, t0)
	}
	if !updated.UpdatedAt.Equal(t1) {
		t.Errorf("UpdatedAt: got %v, want %v", updated.UpdatedAt, t1)
	}
}

func TestSetCreatesMissingDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, err := s.Set(ctx, "skills", "caller-chosen", json.RawMessage(`{"name":"Rust"}`))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if doc.Key != "caller-chosen" {
		t.Errorf("Key: got %q", doc.Key)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be stamped on upsert-create")
	}
}

func TestSetConcurrentWithRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			doc, err := s.Set(ctx, "skills", "contested", json.RawMessage(`{"name":"Go"}`))
			if err != nil {
				errs <- err
				return
			}
			if doc.Key != "contested" {
				errs <- errors.New("unexpected key " + doc.Key)
			}
		}()
		go func() {
			defer wg.Done()
			if err := s.Remove(ctx, "skills", "contested"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Set/Remove: %v", err)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Update(ctx, "hero", "main_hero", map[string]json.RawMessage{
		"title":       json.RawMessage(`"Hi"`),
		"description": json.RawMessage(`"Bio"`),
	}); err != nil {
		t.Fatalf("Update (create): %v", err)
	}

	doc, err := s.Update(ctx, "hero", "main_hero", map[string]json.RawMessage{
		"title": json.RawMessage(`"Hello"`),
	})
	if err != nil {
		t.Fatalf("Update (merge): %v", err)
	}

	var fields map[string]string
	if err := json.Unmarshal(doc.Body, &fields); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if fields["title"] != "Hello" {
		t.Errorf("title: got %q, want %q", fields["title"], "Hello")
	}
	if fields["description"] != "Bio" {
		t.Errorf("description lost on merge: got %q", fields["description"])
	}
}

func TestKeysSortByPushOrder(t *testing.T) {
	same := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return same }))
	ctx := context.Background()

	var keys []string
	for i := 0; i < 5; i++ {
		doc, err := s.Push(ctx, "categories", json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("Push: %v", err)
		}
		keys = append(keys, doc.Key)
	}

	docs, err := s.List(ctx, "categories")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := range docs {
		if docs[i].Key != keys[i] {
			t.Fatalf("position %d: got %s, want %s", i, docs[i].Key, keys[i])
		}
	}
}

func TestPathsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Push(ctx, "projects", json.RawMessage(`{"title":"A"}`))
	s.Push(ctx, "skills", json.RawMessage(`{"name":"B"}`))

	projects, _ := s.List(ctx, "projects")
	skills, _ := s.List(ctx, "skills")
	if len(projects) != 1 || len(skills) != 1 {
		t.Errorf("got %d projects and %d skills, want 1 and 1", len(projects), len(skills))
	}
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	s.Close()

	_, err = s.List(context.Background(), "projects")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenRequiresDSNForServerBackends(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlserver"} {
		if _, err := Open(Config{Driver: driver}); err == nil {
			t.Errorf("%s: expected error for empty DSN", driver)
		}
	}
}

func TestLookupDialectAliases(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"", "sqlite"},
		{"sqlite3", "sqlite"},
		{"postgresql", "postgres"},
		{"pgx", "postgres"},
		{"mariadb", "mysql"},
		{"mssql", "sqlserver"},
		{"sqlserver", "sqlserver"},
	}
	for _, tt := range tests {
		d, err := lookupDialect(tt.driver)
		if err != nil {
			t.Fatalf("lookupDialect(%q): %v", tt.driver, err)
		}
		if d.name != tt.want {
			t.Errorf("lookupDialect(%q) = %s, want %s", tt.driver, d.name, tt.want)
		}
	}
}

func TestUpsertRebindsPerDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite", "?"},
		{"postgres", "$5"},
		{"mysql", "?"},
		{"sqlserver", "@p5"},
	}
	for _, tt := range tests {
		d, err := lookupDialect(tt.driver)
		if err != nil {
			t.Fatalf("lookupDialect(%q): %v", tt.driver, err)
		}
		q := sqlx.Rebind(sqlx.BindType(d.driverName), d.upsert)
		if !strings.Contains(q, tt.want) {
			t.Errorf("%s upsert = %q, want placeholder %s", tt.driver, q, tt.want)
		}
		if tt.want != "?" && strings.Contains(q, "?") {
			t.Errorf("%s upsert still has ? placeholders: %q", tt.driver, q)
		}
	}
}
