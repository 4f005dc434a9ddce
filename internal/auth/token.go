package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewShareToken returns a 32-character hex token for public share links.
func NewShareToken() (string, error) {
	return randomHex(16)
}

// NewSessionToken returns a 64-character hex token for login sessions.
func NewSessionToken() (string, error) {
	return randomHex(32)
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
