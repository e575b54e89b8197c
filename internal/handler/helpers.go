package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/folio-cms/folio/internal/content"
	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/server/middleware"
	"github.com/folio-cms/folio/internal/service"
	"github.com/folio-cms/folio/internal/session"
	"github.com/folio-cms/folio/internal/store"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeOK writes a 200 success envelope without a payload.
func writeOK(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: message})
}

// writeData writes a 200 success envelope carrying data.
func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, model.DataResponse{Success: true, Data: data})
}

// writeError writes a failure envelope. field names the rejected input, if any.
func writeError(w http.ResponseWriter, status int, message string, field ...string) {
	resp := model.ErrorResponse{Message: message}
	if len(field) > 0 {
		resp.Field = field[0]
	}
	writeJSON(w, status, resp)
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// fail classifies err into a status and a client-safe message. Server-side
// failures are logged with the request ID; their details never reach the
// response.
func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error(), verr.Field)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, session.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrNotConfigured):
		logger.ErrorContext(r.Context(), op+" failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "Server authentication is not configured")
	default:
		logger.ErrorContext(r.Context(), op+" failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}
