package middleware

import (
	"errors"
	"net/http"
)

// DefaultMaxBodySize fits a typical multi-subject breath-by-breath export.
const DefaultMaxBodySize = 32 << 20

// MaxBody limits request bodies of POST, PUT and PATCH requests.
// maxSize <= 0 uses DefaultMaxBodySize.
func MaxBody(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsTooLarge reports whether err came from reading past the body limit.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
