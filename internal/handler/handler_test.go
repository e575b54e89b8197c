package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/folio-cms/folio/internal/content"
	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/server/middleware"
	"github.com/folio-cms/folio/internal/service"
	"github.com/folio-cms/folio/internal/session"
	"github.com/folio-cms/folio/internal/store"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "supersecretpassword"
)

// recordingRelay captures relayed messages and can be told to fail.
type recordingRelay struct {
	sent []model.ContactMessage
	err  error
}

func (r *recordingRelay) Send(_ context.Context, msg model.ContactMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// testEnv holds shared state for handler tests.
type testEnv struct {
	store   *store.Store
	content *content.Content
	relay   *recordingRelay
	router  chi.Router
}

// newTestEnv mounts every handler on a bare Chi router over an in-memory
// store. Session-protected routes are wrapped with RequireSession exactly as
// the server does.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("store.NewMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := content.New(s)
	authSvc := service.NewAuthService(service.Secrets{
		AdminEmail:    testEmail,
		AdminPassword: testPassword,
		TokenSecret:   "test-secret-for-handler-tests",
	})
	guard := session.NewGuard(authSvc, session.CookieStore{})
	rel := &recordingRelay{}

	auth := NewAuthHandler(guard, logger)
	projects := NewCollectionHandler(c.Projects, logger)
	categories := NewCollectionHandler(c.Categories, logger)
	hero := NewHeroHandler(c.Hero, logger)
	contact := NewContactHandler(rel, logger)

	r := chi.NewRouter()
	r.Post("/api/auth/login", auth.Login)
	r.Post("/api/auth/logout", auth.Logout)
	r.Get("/api/projects", projects.List)
	r.Get("/api/categories", categories.List)
	r.Get("/api/hero", hero.Get)
	r.Post("/api/send", contact.Send)
	r.Get("/openapi.json", NewOpenAPIHandler("test").ServeSpec)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(guard))
		r.Get("/api/auth/check", auth.Check)
		r.Post("/api/auth/refresh", auth.Refresh)
		r.Post("/api/projects", projects.Create)
		r.Put("/api/projects", projects.Update)
		r.Delete("/api/projects", projects.Delete)
		r.Post("/api/categories", categories.Create)
		r.Delete("/api/categories", categories.Delete)
		r.Post("/api/hero", hero.Save)
	})

	return &testEnv{store: s, content: c, relay: rel, router: r}
}

// do executes an HTTP request against the test router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// login performs a successful login and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rr := e.do(t, "POST", "/api/auth/login", toJSON(t, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}))
	assertStatus(t, rr, http.StatusOK)
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func toJSON(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("toJSON: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

// envelope is the generic shape of every response body.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Field   string          `json:"field"`
	Data    json.RawMessage `json:"data"`
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestLogin_ValidCredentials(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	if cookie.Value == "" || !cookie.HttpOnly {
		t.Errorf("unexpected cookie %+v", cookie)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]string{
		{"email": testEmail, "password": "wrong"},
		{"email": "someone@else.com", "password": testPassword},
		{},
	} {
		rr := env.do(t, "POST", "/api/auth/login", toJSON(t, body))
		assertStatus(t, rr, http.StatusUnauthorized)

		var resp envelope
		decodeJSON(t, rr, &resp)
		if resp.Success || resp.Message != "Invalid credentials" {
			t.Errorf("unexpected envelope %+v", resp)
		}
		if len(rr.Result().Cookies()) != 0 {
			t.Error("failed login must not set a cookie")
		}
	}
}

func TestLogin_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "POST", "/api/auth/login", bytes.NewBufferString("{not json"))
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/auth/logout", nil)
	assertStatus(t, rr, http.StatusOK)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expired %s cookie, got %+v", session.CookieName, cookies)
	}
}

func TestCheck(t *testing.T) {
	env := newTestEnv(t)

	assertStatus(t, env.do(t, "GET", "/api/auth/check", nil), http.StatusUnauthorized)

	rr := env.do(t, "GET", "/api/auth/check", nil, env.login(t))
	assertStatus(t, rr, http.StatusOK)

	var resp envelope
	decodeJSON(t, rr, &resp)
	var data checkResponse
	json.Unmarshal(resp.Data, &data)
	if data.Email != testEmail {
		t.Errorf("email = %q, want %q", data.Email, testEmail)
	}
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)

	assertStatus(t, env.do(t, "POST", "/api/auth/refresh", nil), http.StatusUnauthorized)

	rr := env.do(t, "POST", "/api/auth/refresh", nil, env.login(t))
	assertStatus(t, rr, http.StatusOK)
	if len(rr.Result().Cookies()) != 1 {
		t.Error("refresh should set a new session cookie")
	}
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

func TestCollectionList_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/api/projects", nil)
	assertStatus(t, rr, http.StatusOK)
	if got := rr.Body.String(); got != "{\"success\":true,\"data\":[]}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestCollectionCRUD(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	// Create
	rr := env.do(t, "POST", "/api/projects", toJSON(t, map[string]interface{}{
		"title": "Folio", "description": "CMS", "tags": []string{"go"},
	}), cookie)
	assertStatus(t, rr, http.StatusOK)
	var resp envelope
	decodeJSON(t, rr, &resp)
	var created model.Project
	json.Unmarshal(resp.Data, &created)
	if created.ID == "" || created.CreatedAt == 0 {
		t.Fatalf("created project lacks server fields: %+v", created)
	}

	// Update replaces the whole record
	rr = env.do(t, "PUT", "/api/projects", toJSON(t, map[string]interface{}{
		"id": created.ID, "title": "Folio 2",
	}), cookie)
	assertStatus(t, rr, http.StatusOK)

	// List sees the replacement
	rr = env.do(t, "GET", "/api/projects", nil)
	decodeJSON(t, rr, &resp)
	var list []model.Project
	json.Unmarshal(resp.Data, &list)
	if len(list) != 1 || list[0].Title != "Folio 2" || list[0].Description != "" {
		t.Fatalf("unexpected list after update: %+v", list)
	}
	if list[0].CreatedAt != created.CreatedAt {
		t.Errorf("createdAt changed on update: %d -> %d", created.CreatedAt, list[0].CreatedAt)
	}

	// Delete, twice
	assertStatus(t, env.do(t, "DELETE", "/api/projects?id="+created.ID, nil, cookie), http.StatusOK)
	assertStatus(t, env.do(t, "DELETE", "/api/projects?id="+created.ID, nil, cookie), http.StatusOK)

	rr = env.do(t, "GET", "/api/projects", nil)
	decodeJSON(t, rr, &resp)
	if string(resp.Data) != "[]" {
		t.Errorf("expected empty list after delete, got %s", resp.Data)
	}
}

func TestCollectionValidation(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   io.Reader
		field  string
	}{
		{"create without title", "POST", "/api/projects", toJSON(t, map[string]string{"description": "x"}), "title"},
		{"update without id", "PUT", "/api/projects", toJSON(t, map[string]string{"title": "x"}), "id"},
		{"delete without id", "DELETE", "/api/projects", nil, "id"},
		{"category without name", "POST", "/api/categories", toJSON(t, map[string]string{}), "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.body, cookie)
			assertStatus(t, rr, http.StatusBadRequest)
			var resp envelope
			decodeJSON(t, rr, &resp)
			if resp.Field != tt.field {
				t.Errorf("field = %q, want %q", resp.Field, tt.field)
			}
		})
	}

	rr := env.do(t, "GET", "/api/projects", nil)
	var resp envelope
	decodeJSON(t, rr, &resp)
	if string(resp.Data) != "[]" {
		t.Errorf("rejected writes must not persist, got %s", resp.Data)
	}
}

func TestMutationsRequireSession(t *testing.T) {
	env := newTestEnv(t)

	for _, req := range []struct{ method, path string }{
		{"POST", "/api/projects"},
		{"PUT", "/api/projects"},
		{"DELETE", "/api/projects?id=x"},
		{"POST", "/api/categories"},
		{"POST", "/api/hero"},
	} {
		rr := env.do(t, req.method, req.path, toJSON(t, map[string]string{"title": "x", "name": "x"}))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", req.method, req.path, rr.Code)
		}
	}

	projects, _ := env.content.Projects.List(context.Background())
	cats, _ := env.content.Categories.List(context.Background())
	if len(projects) != 0 || len(cats) != 0 {
		t.Error("unauthenticated writes reached the store")
	}
}

func TestStoreFailureIs500(t *testing.T) {
	env := newTestEnv(t)
	env.store.Close()

	rr := env.do(t, "GET", "/api/projects", nil)
	assertStatus(t, rr, http.StatusInternalServerError)

	var resp envelope
	decodeJSON(t, rr, &resp)
	if resp.Message != "Failed to fetch projects" {
		t.Errorf("message = %q", resp.Message)
	}
}

// ---------------------------------------------------------------------------
// Hero
// ---------------------------------------------------------------------------

func TestHero(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rr := env.do(t, "GET", "/api/hero", nil)
	assertStatus(t, rr, http.StatusOK)
	var resp envelope
	decodeJSON(t, rr, &resp)
	if string(resp.Data) != "null" {
		t.Errorf("unset hero should be null, got %s", resp.Data)
	}

	assertStatus(t, env.do(t, "POST", "/api/hero", toJSON(t, map[string]interface{}{
		"title": "Hi", "description": "Bio",
	}), cookie), http.StatusOK)
	assertStatus(t, env.do(t, "POST", "/api/hero", toJSON(t, map[string]interface{}{
		"title": "Hello",
	}), cookie), http.StatusOK)

	rr = env.do(t, "GET", "/api/hero", nil)
	decodeJSON(t, rr, &resp)
	var hero model.Hero
	json.Unmarshal(resp.Data, &hero)
	if hero.ID != model.HeroID || hero.Title != "Hello" || hero.Description != "Bio" {
		t.Errorf("unexpected hero after merge: %+v", hero)
	}
}

func TestHero_RejectsNonObject(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "POST", "/api/hero", bytes.NewBufferString(`["not","an","object"]`), env.login(t))
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Contact
// ---------------------------------------------------------------------------

func TestSend(t *testing.T) {
	env := newTestEnv(t)

	msg := model.ContactMessage{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}
	rr := env.do(t, "POST", "/api/send", toJSON(t, msg))
	assertStatus(t, rr, http.StatusOK)
	if len(env.relay.sent) != 1 || env.relay.sent[0] != msg {
		t.Errorf("relay received %+v", env.relay.sent)
	}
}

func TestSend_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		msg   model.ContactMessage
		field string
	}{
		{"missing subject", model.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hello"}, "subject"},
		{"bad email", model.ContactMessage{Name: "Ada", Email: "nope", Subject: "Hi", Message: "Hello"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/send", toJSON(t, tt.msg))
			assertStatus(t, rr, http.StatusBadRequest)
			var resp envelope
			decodeJSON(t, rr, &resp)
			if resp.Field != tt.field {
				t.Errorf("field = %q, want %q", resp.Field, tt.field)
			}
		})
	}
	if len(env.relay.sent) != 0 {
		t.Error("invalid messages must not be relayed")
	}
}

func TestSend_RelayFailure(t *testing.T) {
	env := newTestEnv(t)
	env.relay.err = errors.New("smtp: connection refused")

	rr := env.do(t, "POST", "/api/send", toJSON(t, model.ContactMessage{
		Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello",
	}))
	assertStatus(t, rr, http.StatusInternalServerError)

	var resp envelope
	decodeJSON(t, rr, &resp)
	if resp.Message != "Email failed to send" {
		t.Errorf("message = %q", resp.Message)
	}
}

// ---------------------------------------------------------------------------
// OpenAPI
// ---------------------------------------------------------------------------

func TestServeSpec(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/openapi.json", nil)
	assertStatus(t, rr, http.StatusOK)

	var doc struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
	decodeJSON(t, rr, &doc)
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://example.com" {
		t.Errorf("servers = %+v", doc.Servers)
	}
	if doc.Info.Version != "test" {
		t.Errorf("version = %q", doc.Info.Version)
	}
}
