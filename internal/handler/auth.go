package handler

import (
	"log/slog"
	"net/http"

	"github.com/folio-cms/folio/internal/server/middleware"
	"github.com/folio-cms/folio/internal/session"
)

// AuthHandler serves the login, logout, refresh and check endpoints.
type AuthHandler struct {
	guard  *session.Guard
	logger *slog.Logger
}

func NewAuthHandler(guard *session.Guard, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{guard: guard, logger: logger}
}

// loginRequest is the expected payload for the Login endpoint.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type checkResponse struct {
	Email string `json:"email"`
}

// Login checks the administrator credentials and sets the session cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	claim, err := h.guard.Start(w, req.Email, req.Password)
	if err != nil {
		fail(w, r, h.logger, "log in", err)
		return
	}

	h.logger.InfoContext(r.Context(), "admin logged in",
		"admin", claim.Email,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	writeOK(w, "Login successful")
}

// Logout clears the session cookie. It succeeds with or without a session.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.guard.End(w)
	writeOK(w, "Logged out")
}

// Refresh reissues the session token with a new expiry.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Refresh(w, r); err != nil {
		fail(w, r, h.logger, "refresh session", err)
		return
	}
	writeOK(w, "Session refreshed")
}

// Check reports the identity of the current session. Mounted behind
// RequireSession, so reaching it means the session is valid.
// GET /api/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	claim, ok := middleware.GetClaim(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeData(w, checkResponse{Email: claim.Email})
}
