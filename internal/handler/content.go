package handler

import (
	"log/slog"
	"net/http"

	"github.com/folio-cms/folio/internal/content"
)

// CollectionHandler exposes one content collection over HTTP. Record ids
// travel in the body on PUT and in the id query parameter on DELETE.
type CollectionHandler[T any, P content.Record[T]] struct {
	repo   *content.Repository[T, P]
	logger *slog.Logger
}

func NewCollectionHandler[T any, P content.Record[T]](repo *content.Repository[T, P], logger *slog.Logger) *CollectionHandler[T, P] {
	return &CollectionHandler[T, P]{repo: repo, logger: logger}
}

// List returns every record of the collection.
// GET /api/{collection}
func (h *CollectionHandler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.List(r.Context())
	if err != nil {
		fail(w, r, h.logger, "fetch "+h.repo.Collection().Path, err)
		return
	}
	writeData(w, recs)
}

// Create adds a record and returns it with its id and createdAt.
// POST /api/{collection}
func (h *CollectionHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := readJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.repo.Create(r.Context(), rec)
	if err != nil {
		fail(w, r, h.logger, "create "+h.repo.Collection().Name, err)
		return
	}
	writeData(w, created)
}

// Update replaces the record named by the body's id.
// PUT /api/{collection}
func (h *CollectionHandler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := readJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.repo.Update(r.Context(), rec)
	if err != nil {
		fail(w, r, h.logger, "update "+h.repo.Collection().Name, err)
		return
	}
	writeData(w, updated)
}

// Delete removes the record named by the id query parameter. Unknown ids
// succeed.
// DELETE /api/{collection}?id=
func (h *CollectionHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		fail(w, r, h.logger, "delete "+h.repo.Collection().Name, err)
		return
	}
	writeOK(w, "Deleted successfully")
}
