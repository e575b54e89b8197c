// Package dashboard is the client side of an admin session: the gate that
// decides whether the content dashboard may be entered, the HTTP client that
// talks to the folio API, and the flag stores that remember the outcome
// between runs.
//
// The gate mirrors server state for convenience only. Every content write is
// still authorised by the server's session cookie check.
package dashboard

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
)

const (
	// LoginPath is where an unauthorised visitor is sent.
	LoginPath = "/dashboard/login"
	// HomePath is the dashboard entry point once authorised.
	HomePath = "/dashboard"
)

var (
	ErrPasskeyMismatch      = errors.New("passkey does not match")
	ErrPasskeyNotConfigured = errors.New("dashboard passkey is not configured")
	ErrNotAwaitingPasskey   = errors.New("passkey is only accepted after a successful login")
)

// State is where the gate is in the login flow.
type State int

const (
	StateChecking State = iota
	StateUnauthenticated
	StateAwaitingPasskey
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingPasskey:
		return "awaiting passkey"
	case StateAuthorized:
		return "authorized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SessionAPI is the server half of the session, normally *Client.
type SessionAPI interface {
	Check(ctx context.Context) (email string, err error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// Gate drives the two-step dashboard login: server credentials first, then
// the shared passkey. Safe for concurrent use.
type Gate struct {
	api     SessionAPI
	flags   FlagStore
	passkey string

	mu    sync.Mutex
	state State
	email string
}

func NewGate(api SessionAPI, flags FlagStore, passkey string) *Gate {
	return &Gate{
		api:     api,
		flags:   flags,
		passkey: passkey,
		state:   StateChecking,
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Email returns the administrator the server reported, if any.
func (g *Gate) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email
}

// Check asks the server whether the stored session is still valid. A valid
// session resumes at AwaitingPasskey, or Authorized when the passkey was
// already verified. Any failure, including transport errors, resets the
// flags and lands in Unauthenticated; only flag persistence errors are
// returned.
func (g *Gate) Check(ctx context.Context) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	flags, err := g.flags.Load()
	if err != nil {
		return g.reset(fmt.Errorf("load flags: %w", err))
	}

	email, err := g.api.Check(ctx)
	if err != nil {
		return g.reset(nil)
	}

	g.email = email
	if flags.PasskeyVerified {
		g.state = StateAuthorized
	} else {
		g.state = StateAwaitingPasskey
	}
	if !flags.Authenticated {
		flags.Authenticated = true
		if err := g.flags.Save(flags); err != nil {
			return g.state, fmt.Errorf("save flags: %w", err)
		}
	}
	return g.state, nil
}

// Login signs in with the server. Success never authorises directly: the
// gate moves to AwaitingPasskey with the passkey flag cleared.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.api.Login(ctx, email, password); err != nil {
		g.reset(nil)
		return err
	}

	g.state = StateAwaitingPasskey
	g.email = email
	if err := g.flags.Save(Flags{Authenticated: true}); err != nil {
		return fmt.Errorf("save flags: %w", err)
	}
	return nil
}

// VerifyPasskey completes the login with the shared dashboard passkey.
func (g *Gate) VerifyPasskey(code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateAwaitingPasskey {
		return ErrNotAwaitingPasskey
	}
	if g.passkey == "" {
		return ErrPasskeyNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(g.passkey)) != 1 {
		return ErrPasskeyMismatch
	}

	g.state = StateAuthorized
	if err := g.flags.Save(Flags{Authenticated: true, PasskeyVerified: true}); err != nil {
		return fmt.Errorf("save flags: %w", err)
	}
	return nil
}

// Logout ends the session locally whatever the server says. A server error
// is still returned so the caller can report it.
func (g *Gate) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	apiErr := g.api.Logout(ctx)
	if _, err := g.reset(nil); err != nil {
		return err
	}
	if apiErr != nil {
		return fmt.Errorf("server logout: %w", apiErr)
	}
	return nil
}

// Refresh extends the server session. A rejected refresh means the session
// is gone, so the gate resets the same way a failed Check does.
func (g *Gate) Refresh(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.api.Refresh(ctx); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			g.reset(nil)
		}
		return err
	}
	return nil
}

// Enter reports where a request for the dashboard should go.
func (g *Gate) Enter() (string, bool) {
	if g.State() == StateAuthorized {
		return HomePath, true
	}
	return LoginPath, false
}

// reset moves to Unauthenticated and clears the persisted flags. Callers
// hold g.mu. cause, when non-nil, is returned ahead of a clear failure.
func (g *Gate) reset(cause error) (State, error) {
	g.state = StateUnauthenticated
	g.email = ""
	clearErr := g.flags.Clear()
	if cause != nil {
		return g.state, cause
	}
	if clearErr != nil {
		return g.state, fmt.Errorf("clear flags: %w", clearErr)
	}
	return g.state, nil
}
