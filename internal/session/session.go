// the session package holds the credentials obtained from a login.
// The dashboard keeps a Session in a sealed cookie (see internal/auth) and the CLI keeps one in a YAML file (see FileStore).
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/siportevent/siports/internal/client"
)

// TokenStatus represents the status of a stored access token
type TokenStatus int

const (
	TokenMissing TokenStatus = iota
	TokenExpired
	TokenValid
)

var tokenStatusNames = []string{"TokenMissing", "TokenExpired", "TokenValid"}

func (t TokenStatus) String() string {
	if t < 0 || int(t) >= len(tokenStatusNames) {
		return fmt.Sprintf("TokenStatus(%d)", int(t))
	}
	return tokenStatusNames[t]
}

type Session struct {
	AccessToken string          `json:"access_token" yaml:"access_token"`
	TokenType   string          `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	ExpiresAt   time.Time       `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
	User        *client.Profile `json:"user,omitempty" yaml:"user,omitempty"`
}

// FromLogin builds a session from a login response.
// The expiry comes from expires_in when the backend sends it, otherwise from the token's exp claim (if any).
func FromLogin(res *client.LoginResponse, now time.Time) *Session {
	if res == nil {
		return nil
	}

	s := &Session{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		User:        res.User,
	}

	switch {
	case res.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(res.ExpiresIn) * time.Second)
	default:
		if exp, ok := tokenExpiry(res.AccessToken); ok {
			s.ExpiresAt = exp
		}
	}
	return s
}

// Status reports whether the session can still be used at the given time
func (s *Session) Status(now time.Time) TokenStatus {
	if s == nil || s.AccessToken == "" {
		return TokenMissing
	}
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return TokenExpired
	}
	return Status(s.AccessToken, now)
}

// Token implements client.TokenProvider
func (s *Session) Token(context.Context) (string, error) {
	if s == nil {
		return "", nil
	}
	return s.AccessToken, nil
}

// IsAdmin reports whether the session belongs to an administrator
func (s *Session) IsAdmin() bool {
	return s != nil && s.User.IsAdmin()
}

// Status inspects an access token locally.
//
// Tokens that parse as JWTs are checked against their exp claim without verifying the signature (only the backend can do that).
// Opaque tokens are reported as valid: their expiry is only detectable when the backend answers 401.
func Status(token string, now time.Time) TokenStatus {
	if token == "" {
		return TokenMissing
	}
	exp, ok := tokenExpiry(token)
	if ok && !now.Before(exp) {
		return TokenExpired
	}
	return TokenValid
}

func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &jwt.RegisteredClaims{}

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

var _ client.TokenProvider = (*Session)(nil)
