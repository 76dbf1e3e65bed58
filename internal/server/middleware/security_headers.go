package middleware

import "net/http"

// SecurityHeaders sets headers for a JSON-only API.
func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			// Reports may contain subject data.
			h.Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}
