package httpx

import (
	"net/http"

	"github.com/ggjcommunity/auth/pkg/jwtx"
)

// RequireRole the caller's role claim must be one of roles. Must run after
// AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeBearerError(w, "Missing bearer token")
				return
			}

			role := claims.String(jwtx.ClaimRole)
			if _, ok := want[role]; !ok {
				WriteError(w, http.StatusForbidden, "forbidden", "Insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
