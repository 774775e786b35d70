package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelDebug, "prod")

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(RequestLogging(log))
	router.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		ContextWithLogAttrs(r.Context(), slog.String("admin_email", "admin@siports.com"))
		ContextRequestLogger(r.Context()).Debug("rendering admin dashboard")
		w.WriteHeader(http.StatusTeapot)
	})
	router.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2, "one middleware record plus one completion record; probes are not logged")

	var first, completion map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &completion))

	assert.Equal(t, "rendering admin dashboard", first["msg"])
	assert.NotEmpty(t, first["request_id"])

	assert.Equal(t, "request completed", completion["msg"])
	assert.Equal(t, "WARN", completion["level"])
	assert.Equal(t, float64(http.StatusTeapot), completion["status"])
	assert.Equal(t, "admin", completion["component"])
	assert.Equal(t, "admin@siports.com", completion["admin_email"])
	assert.Equal(t, first["request_id"], completion["request_id"])
}
