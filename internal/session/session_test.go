package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/siportevent/siports/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp *time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: "admin@siports.com"}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Minute)

	tests := []struct {
		name  string
		token string
		want  TokenStatus
	}{
		{name: "missing", token: "", want: TokenMissing},
		{name: "opaque token", token: "c2lwb3J0cy1vcGFxdWU", want: TokenValid},
		{name: "jwt not expired", token: signedToken(t, &future), want: TokenValid},
		{name: "jwt expired", token: signedToken(t, &past), want: TokenExpired},
		{name: "jwt without exp", token: signedToken(t, nil), want: TokenValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.token, now))
		})
	}
}

func TestFromLogin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(30 * time.Minute)

	t.Run("expires_in", func(t *testing.T) {
		s := FromLogin(&client.LoginResponse{AccessToken: "opaque", ExpiresIn: 3600}, now)
		assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
		assert.Equal(t, TokenValid, s.Status(now))
		assert.Equal(t, TokenExpired, s.Status(now.Add(2*time.Hour)))
	})

	t.Run("exp claim", func(t *testing.T) {
		s := FromLogin(&client.LoginResponse{AccessToken: signedToken(t, &exp)}, now)
		assert.True(t, s.ExpiresAt.Equal(exp))
	})

	t.Run("no expiry information", func(t *testing.T) {
		s := FromLogin(&client.LoginResponse{AccessToken: "opaque"}, now)
		assert.True(t, s.ExpiresAt.IsZero())
		assert.Equal(t, TokenValid, s.Status(now.Add(24*time.Hour)))
	})

	t.Run("nil response", func(t *testing.T) {
		assert.Nil(t, FromLogin(nil, now))
	})
}

func TestSession_TokenProvider(t *testing.T) {
	s := &Session{AccessToken: "abc", User: &client.Profile{Email: "admin@siports.com", Role: "admin"}}

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.True(t, s.IsAdmin())

	var missing *Session
	token, err = missing.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.False(t, missing.IsAdmin())
	assert.Equal(t, TokenMissing, missing.Status(time.Now()))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	store := NewFileStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	want := &Session{
		AccessToken: "abc",
		TokenType:   "bearer",
		ExpiresAt:   time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		User:        &client.Profile{ID: "1", Email: "admin@siports.com", Role: "admin", FirstName: "Admin"},
	}
	require.NoError(t, store.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	assert.Equal(t, want.User, got.User)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := NewFileStore(path)

	assert.Error(t, store.Save(&Session{}), "empty token is refused")

	require.NoError(t, os.WriteFile(path, []byte("access_token: [unterminated"), 0o600))
	_, err := store.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}
