package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/ggjcommunity/auth/pkg/b64x"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, base64url encoded without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate random token: %w", err)
	}

	return b64x.Encode(buf), nil
}

// GenerateOpaqueCode returns a one-time exchange code. It carries no claims
// and has no expiry of its own; whoever stores it tracks both.
func GenerateOpaqueCode() (string, error) {
	return GenerateToken(TokenSize256)
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token so
// it can be stored and looked up without keeping the original value.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return b64x.Encode(sum[:])
}
