package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize caps request bodies at 1MB. Chat messages are
// capped far lower at the handler; this bound protects every route.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize limits request body size
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Declared length first, then a hard reader cap for
			// chunked bodies that never declare one
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
