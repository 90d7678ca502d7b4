package srvutil

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/twipi/bfhl/internal/slogctx"
)

func TestLogRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(LogRequests(logger))
	r.Get("/teapot", func(w http.ResponseWriter, r *http.Request) {
		slogctx.From(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/teapot", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	out := buf.String()
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "status=418")
	assert.Equal(t, 2, strings.Count(out, "request_id="))
}

func TestParseForm(t *testing.T) {
	var got string
	h := ParseForm(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.PostForm.Get("input")
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader("input=%7B%7D"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "{}", got)
}

func TestRespond200(t *testing.T) {
	w := httptest.NewRecorder()
	Respond200(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
