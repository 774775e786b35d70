package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24

	// hkdf info - changing it invalidates every issued cookie
	sealerInfo = "siports dashboard session cookie v1"
)

var ErrInvalidCookie = errors.New("invalid or tampered session cookie")

// CookieSealer encrypts and authenticates cookie values with NaCl secretbox.
// The key is derived from the configured secret with HKDF-SHA256.
type CookieSealer struct {
	key [keySize]byte
}

func NewCookieSealer(secret string) (*CookieSealer, error) {
	if secret == "" {
		return nil, fmt.Errorf("cookie secret cannot be empty")
	}

	s := &CookieSealer{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(sealerInfo))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive cookie key: %w", err)
	}
	return s, nil
}

// Seal marshals v to JSON and returns the encrypted, url-safe cookie value
func (s *CookieSealer) Seal(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cookie payload: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal into v
func (s *CookieSealer) Open(value string, v any) error {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return ErrInvalidCookie
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return ErrInvalidCookie
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return ErrInvalidCookie
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	return nil
}
