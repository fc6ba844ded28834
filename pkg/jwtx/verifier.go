package jwtx

import "time"

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Issuer mints tokens for a set of claims.
type Issuer interface {
	Issue(claims Claims) (string, error)
	IssueWithLifetime(claims Claims, lifetime time.Duration) (string, error)
}

// Result is the tagged outcome of a verification, shaped for request
// handlers that report validity rather than branch on errors.
type Result struct {
	Valid  bool   `json:"valid"`
	Claims Claims `json:"claims,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Check verifies token with v and folds the outcome into a Result.
func Check(v Verifier, token string) Result {
	claims, err := v.Verify(token)
	if err != nil {
		return Result{Valid: false, Error: Reason(err)}
	}
	return Result{Valid: true, Claims: claims}
}
