package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/session"
)

// AuthService keeps the dashboard session in a sealed cookie.
//
// The cookie holds the backend access token and the user profile so that any dashboard instance can serve the request
// without server-side session storage.
type AuthService struct {
	sealer *CookieSealer
	secure bool
	now    func() time.Time
}

func NewAuthService(sealer *CookieSealer, secureCookies bool) *AuthService {
	return &AuthService{
		sealer: sealer,
		secure: secureCookies,
		now:    time.Now,
	}
}

// SetSessionCookie stores the session in the browser.
// The cookie expires with the access token, or after SessionCookieMaxAge when the expiry is unknown.
func (a *AuthService) SetSessionCookie(w http.ResponseWriter, s *session.Session) error {
	if s == nil || s.AccessToken == "" {
		return errors.New("cannot store an empty session")
	}

	value, err := a.sealer.Seal(s)
	if err != nil {
		return fmt.Errorf("failed to seal session: %w", err)
	}

	maxAge := int(siports.SessionCookieMaxAge.Seconds())
	if !s.ExpiresAt.IsZero() {
		maxAge = int(s.ExpiresAt.Sub(a.now()).Seconds())
		if maxAge <= 0 {
			return errors.New("cannot store an expired session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     siports.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
	return nil
}

// ClearSessionCookie removes the session cookie
func (a *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     siports.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// SessionFromRequest returns the session stored in the request cookie, or nil when there is none.
// An error is returned when the cookie is present but cannot be opened.
func (a *AuthService) SessionFromRequest(r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(siports.SessionCookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s session.Session
	if err := a.sealer.Open(cookie.Value, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CheckSessionStatus reads the session cookie and reports whether it can be used
func (a *AuthService) CheckSessionStatus(r *http.Request) (*session.Session, session.TokenStatus, error) {
	s, err := a.SessionFromRequest(r)
	if err != nil {
		return nil, session.TokenMissing, err
	}
	return s, s.Status(a.now()), nil
}
