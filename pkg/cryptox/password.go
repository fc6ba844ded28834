package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"

	"github.com/ggjcommunity/auth/pkg/b64x"
	"golang.org/x/crypto/pbkdf2"
)

// Configuration for PBKDF2-HMAC-SHA256 hashing. Changing any of these breaks
// every stored credential.
const (
	iterations = 100_000
	keyLength  = 32
	saltLength = 16

	separator = ":"
)

// HashPassword derives a credential record "salt:hash" for password using a
// fresh random salt. Both halves are base64url encoded.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate salt: %w", err)
	}
	return HashPasswordWithSalt(password, b64x.Encode(salt))
}

// HashPasswordWithSalt derives the credential record for password under an
// already encoded salt. The output is fully determined by its inputs; the salt
// text is carried into the record verbatim.
func HashPasswordWithSalt(password, salt string) (string, error) {
	raw, err := b64x.Decode(salt)
	if err != nil {
		return "", fmt.Errorf("cryptox: invalid salt: %w", err)
	}

	dk := pbkdf2.Key([]byte(password), raw, iterations, keyLength, sha256.New)
	return salt + separator + b64x.Encode(dk), nil
}

// VerifyPassword reports whether password matches the stored record. Any
// malformed record simply fails to match.
func VerifyPassword(password, stored string) bool {
	salt, _, ok := strings.Cut(stored, separator)
	if !ok {
		return false
	}

	computed, err := HashPasswordWithSalt(password, salt)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}

// GeneratePassword returns a random 16 character alphanumeric password, used
// for the bootstrap admin account.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
