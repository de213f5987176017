// Package api implements the tagtree REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

const tokenParam = "access_token"

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry "Authorization: Bearer <token>".
// GET requests may pass the token as ?access_token= instead, since
// browser EventSource clients cannot set headers.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			if !tokenMatches(requestToken(r), token) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tagtree"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if r.Method == http.MethodGet {
		return r.URL.Query().Get(tokenParam)
	}
	return ""
}

func tokenMatches(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// RequestLogger logs requests through f with the access_token query
// parameter masked. The handler still sees the original request.
func RequestLogger(f middleware.LogFormatter) func(http.Handler) http.Handler {
	return middleware.RequestLogger(redactingFormatter{f})
}

type redactingFormatter struct {
	middleware.LogFormatter
}

func (f redactingFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	if uri := RedactToken(r.RequestURI); uri != r.RequestURI {
		r = r.Clone(r.Context())
		r.RequestURI = uri
		r.URL.RawQuery = RedactToken("?" + r.URL.RawQuery)[1:]
	}
	return f.LogFormatter.NewLogEntry(r)
}

// RedactToken replaces the access_token value in a request URI.
func RedactToken(uri string) string {
	path, query, ok := strings.Cut(uri, "?")
	if !ok || !strings.Contains(query, tokenParam) {
		return uri
	}
	q, err := url.ParseQuery(query)
	if err != nil || !q.Has(tokenParam) {
		return uri
	}
	q.Set(tokenParam, "REDACTED")
	return path + "?" + q.Encode()
}
