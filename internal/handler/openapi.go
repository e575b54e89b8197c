package handler

import (
	"net/http"

	"github.com/folio-cms/folio/internal/openapi"
)

// OpenAPIHandler serves the OpenAPI document for this API.
type OpenAPIHandler struct {
	version string
}

func NewOpenAPIHandler(version string) *OpenAPIHandler {
	return &OpenAPIHandler{version: version}
}

// ServeSpec returns the document with the request's own origin as server.
// GET /openapi.json
func (h *OpenAPIHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	writeJSON(w, http.StatusOK, openapi.Generate(scheme+"://"+r.Host, h.version))
}
