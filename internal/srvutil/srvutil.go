// Package srvutil holds small HTTP helpers shared by the servers.
package srvutil

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/twipi/bfhl/internal/slogctx"
)

// ParseForm is a middleware that calls ParseForm before the handler is called.
func ParseForm(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Respond200 writes "OK" with status 200.
func Respond200(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// LogRequests returns a middleware that logs each request once it completes
// and makes a request-scoped logger available through [slogctx.From]. It picks
// up the request ID set by [middleware.RequestID] if there is one.
func LogRequests(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger
			if id := middleware.GetReqID(r.Context()); id != "" {
				reqLogger = reqLogger.With("request_id", id)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(slogctx.With(r.Context(), reqLogger)))

			reqLogger.Debug(
				"request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds())
		})
	}
}
