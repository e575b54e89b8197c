package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/folio-cms/folio/internal/service"
)

// ErrNoSession means the request has no session cookie or its token does
// not verify.
var ErrNoSession = errors.New("not authenticated")

// Guard checks and manages the administrator session on the server side.
type Guard struct {
	auth    *service.AuthService
	cookies CookieStore
}

func NewGuard(auth *service.AuthService, cookies CookieStore) *Guard {
	return &Guard{auth: auth, cookies: cookies}
}

// RequireSession returns the claim of a valid session. A missing or rejected
// token is ErrNoSession; a missing signing secret is service.ErrNotConfigured.
func (g *Guard) RequireSession(r *http.Request) (service.Claim, error) {
	token, ok := g.cookies.Read(r)
	if !ok {
		return service.Claim{}, ErrNoSession
	}

	claim, err := g.auth.VerifyToken(token)
	if err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			return service.Claim{}, err
		}
		return service.Claim{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return claim, nil
}

// Start checks the credentials and, on success, sets a fresh session cookie.
func (g *Guard) Start(w http.ResponseWriter, email, password string) (service.Claim, error) {
	claim, err := g.auth.CheckCredentials(email, password)
	if err != nil {
		return service.Claim{}, err
	}
	if err := g.issue(w, claim); err != nil {
		return service.Claim{}, err
	}
	return claim, nil
}

// Refresh reissues the token of a valid session with a new expiry.
func (g *Guard) Refresh(w http.ResponseWriter, r *http.Request) (service.Claim, error) {
	claim, err := g.RequireSession(r)
	if err != nil {
		return service.Claim{}, err
	}
	if err := g.issue(w, claim); err != nil {
		return service.Claim{}, err
	}
	return claim, nil
}

// End clears the session cookie. The token itself stays valid until it
// expires; there is no server-side revocation.
func (g *Guard) End(w http.ResponseWriter) {
	g.cookies.Clear(w)
}

func (g *Guard) issue(w http.ResponseWriter, claim service.Claim) error {
	token, err := g.auth.IssueToken(claim)
	if err != nil {
		return err
	}
	g.cookies.Set(w, token)
	return nil
}
