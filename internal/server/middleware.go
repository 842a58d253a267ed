package server

import (
	"log/slog"
	"net/http"
	"time"
)

// APIKeyAuth guards the destructive state endpoints (import, reset). The key
// travels in X-API-Key; a missing key and a wrong key answer differently so a
// client can tell an unconfigured frontend from a bad credential.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Header.Get("X-API-Key") {
			case "":
				writeError(w, http.StatusUnauthorized, "missing API key")
			case apiKey:
				next.ServeHTTP(w, r)
			default:
				writeError(w, http.StatusForbidden, "invalid API key")
			}
		})
	}
}

// RequestLogging logs one line per request: method, path, status, response
// size and duration.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// corsAllowMethods covers every verb the API routes use.
const corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"

// CORS adds permissive cross-origin headers so a browser frontend served from
// another origin can reach the API. Preflight requests short-circuit here.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseRecorder captures what a handler wrote for the request log.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}
