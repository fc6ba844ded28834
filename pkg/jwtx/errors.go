package jwtx

import "errors"

var (
	ErrMissingSecret      = errors.New("jwtx: missing signing secret")
	ErrSigningFailed      = errors.New("jwtx: signing failed")
	ErrInvalidClaims      = errors.New("jwtx: invalid claims")
	ErrMalformed          = errors.New("jwtx: invalid token format")
	ErrInvalidSignature   = errors.New("jwtx: invalid signature")
	ErrExpired            = errors.New("jwtx: token expired")
	ErrVerificationFailed = errors.New("jwtx: token verification failed")
)

// Reason returns the wire-level reason for a verification error. Callers
// answering an HTTP request use it so every failure mode yields one of a
// small, stable set of messages.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformed):
		return "Invalid token format"
	case errors.Is(err, ErrInvalidSignature):
		return "Invalid signature"
	case errors.Is(err, ErrExpired):
		return "Token expired"
	default:
		return "Token verification failed"
	}
}
