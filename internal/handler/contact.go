package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/relay"
	"github.com/folio-cms/folio/internal/server/middleware"
)

// ContactHandler forwards contact-form submissions through a relay.
type ContactHandler struct {
	relay  relay.Relay
	logger *slog.Logger
}

func NewContactHandler(r relay.Relay, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{relay: r, logger: logger}
}

// Send validates a contact message and relays it.
// POST /api/send
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var msg model.ContactMessage
	if err := readJSON(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if missing := msg.Missing(); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "), missing[0])
		return
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address", "email")
		return
	}

	if err := h.relay.Send(r.Context(), msg); err != nil {
		h.logger.ErrorContext(r.Context(), "contact relay failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "Email failed to send")
		return
	}
	writeOK(w, "Email sent successfully")
}
