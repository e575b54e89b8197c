// Package session ties the signed session token to the admin_token cookie
// and decides whether a request carries a valid administrator session.
package session

import (
	"net/http"

	"github.com/folio-cms/folio/internal/service"
)

// CookieName is the cookie that carries the session token.
const CookieName = "admin_token"

// CookieStore writes and reads the session cookie. Secure is off only in
// development so the cookie survives plain-HTTP localhost.
type CookieStore struct {
	Secure bool
}

// Set attaches the token to the response for SessionTTL.
func (c CookieStore) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(token, int(service.SessionTTL.Seconds())))
}

// Clear tells the browser to drop the session cookie.
func (c CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

// Read returns the token from the request, if any.
func (c CookieStore) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
