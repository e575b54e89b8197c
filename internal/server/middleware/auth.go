package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/service"
)

type contextKeyAuth string

const (
	// ClaimKey is the context key for the session claim of the request.
	ClaimKey contextKeyAuth = "session_claim"

	claimHolderKey contextKeyAuth = "claim_holder"
)

// claimHolder lets Logger see the claim resolved by an inner RequireSession.
type claimHolder struct {
	email string
}

func withClaimHolder(ctx context.Context, h *claimHolder) context.Context {
	return context.WithValue(ctx, claimHolderKey, h)
}

// SessionChecker resolves the administrator session of a request.
// *session.Guard implements it.
type SessionChecker interface {
	RequireSession(r *http.Request) (service.Claim, error)
}

// RequireSession returns an HTTP middleware that only lets requests with a
// valid administrator session through. Anything else gets a 401 (or a 500
// when the server has no token secret) and the next handler never runs.
// On success the claim is attached to the request context.
func RequireSession(guard SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim, err := guard.RequireSession(r)
			if err != nil {
				if errors.Is(err, service.ErrNotConfigured) {
					slog.ErrorContext(r.Context(), "session check failed",
						"error", err,
						"request_id", GetRequestID(r.Context()),
					)
					writeJSONError(w, http.StatusInternalServerError, "Server authentication is not configured")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if h, ok := r.Context().Value(claimHolderKey).(*claimHolder); ok {
				h.email = claim.Email
			}
			ctx := context.WithValue(r.Context(), ClaimKey, claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaim extracts the session claim from the context. The second result
// is false on routes not wrapped by RequireSession.
func GetClaim(ctx context.Context) (service.Claim, bool) {
	claim, ok := ctx.Value(ClaimKey).(service.Claim)
	return claim, ok
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Message: message})
}
