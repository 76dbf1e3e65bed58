package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
)

// AuthConfig holds Basic Auth credentials. Safe for concurrent reads and updates.
type AuthConfig struct {
	mu       sync.RWMutex
	Enabled  bool
	User     string
	Password string
}

// Update replaces the credentials.
func (c *AuthConfig) Update(enabled bool, user, password string) {
	c.mu.Lock()
	c.Enabled = enabled
	c.User = user
	c.Password = password
	c.mu.Unlock()
}

func (c *AuthConfig) get() (enabled bool, user, password string) {
	c.mu.RLock()
	enabled = c.Enabled
	user = c.User
	password = c.Password
	c.mu.RUnlock()
	return
}

// Auth creates a Basic Auth middleware. Paths in excludePaths skip the check;
// a trailing "*" makes the entry a prefix.
func Auth(config *AuthConfig, excludePaths ...string) Middleware {
	exact := make(map[string]bool)
	var prefixes []string
	for _, path := range excludePaths {
		if p, ok := strings.CutSuffix(path, "*"); ok {
			prefixes = append(prefixes, p)
		} else {
			exact[path] = true
		}
	}

	excluded := func(path string) bool {
		if exact[path] {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enabled, wantUser, wantPass := config.get()
			if !enabled || excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			// Both comparisons always run.
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser))
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass))
			if userMatch&passMatch != 1 {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="runeconomy"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
