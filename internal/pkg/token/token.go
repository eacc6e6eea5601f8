package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// signature tokens are opaque and must not be guessable from earlier tokens
const tokenBytes = 32

// NewSignatureToken returns a cryptographically random, URL-safe token.
func NewSignatureToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signature token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
