package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/aitools/aitools/internal/models"
)

var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

type apiKeyCtxKey struct{}

// Auth requires one of apiKeys in headerName (or the api_key cookie) on every
// non-public path. The accepted key is stored for GetAPIKey.
func Auth(apiKeys []string, headerName string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerName)
			if key == "" {
				if c, err := r.Cookie("api_key"); err == nil {
					key = c.Value
				}
			}

			if key == "" {
				models.WriteError(w, http.StatusUnauthorized, "API key required")
				return
			}
			if !validKey(keys, key) {
				models.WriteError(w, http.StatusForbidden, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyCtxKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validKey(keys [][]byte, key string) bool {
	ok := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, []byte(key)) == 1 {
			ok = true
		}
	}
	return ok
}

// GetAPIKey returns the key accepted by Auth, or the X-API-Key header when
// auth is disabled.
func GetAPIKey(r *http.Request) string {
	if k, ok := r.Context().Value(apiKeyCtxKey{}).(string); ok {
		return k
	}
	return r.Header.Get("X-API-Key")
}
