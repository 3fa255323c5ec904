package chi

import (
	"net/http"
	"strings"
)

// exemptPaths bypass authentication (probes and scrapers).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens
// against the configured API keys. An empty key list disables
// authentication entirely.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "

			auth := r.Header.Get("Authorization")
			switch {
			case auth == "":
				writeError(w, http.StatusUnauthorized, codeBadRequest, "missing authorization header")
			case !strings.HasPrefix(auth, bearerPrefix):
				writeError(w, http.StatusUnauthorized, codeBadRequest, "authorization header must use Bearer scheme")
			default:
				if _, ok := validKeys[auth[len(bearerPrefix):]]; !ok {
					writeError(w, http.StatusUnauthorized, codeBadRequest, "invalid api key")
					return
				}
				next.ServeHTTP(w, r)
			}
		})
	}
}
