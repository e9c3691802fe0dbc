package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/folio/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("JSON output", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger(config.LoggingConfig{Level: "debug", Format: FormatJSON}, &buf)
		l.Debug().Str("kind", "blog").Msg("Draft saved")

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("Expected a JSON log line, got %q", buf.String())
		}
		if line["message"] != "Draft saved" || line["kind"] != "blog" {
			t.Errorf("Unexpected log line %v", line)
		}
		if _, ok := line["git_revision"]; !ok {
			t.Error("Expected the build revision on every line")
		}
	})

	t.Run("Console output", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger(config.LoggingConfig{Level: "info", Format: FormatConsole}, &buf)
		l.Info().Msg("Server listening")
		if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "Server listening") {
			t.Errorf("Expected console output, got %q", buf.String())
		}
	})

	t.Run("Invalid level falls back to info", func(t *testing.T) {
		l := newLogger(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
		if l.GetLevel() != zerolog.InfoLevel {
			t.Errorf("Expected info level, got %s", l.GetLevel())
		}
	})
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)

	var seen string
	h := Middleware(l, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("Handling")
		seen = w.Header().Get(HeaderRequestID)
		if _, ok := w.(http.Flusher); !ok {
			t.Error("Expected the wrapped writer to stay flushable")
		}
		http.Error(w, "missing", http.StatusNotFound)
	}))

	t.Run("Generates a request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blogs/missing", nil))

		id := rec.Header().Get(HeaderRequestID)
		if id == "" || id != seen {
			t.Fatalf("Expected a request id on the response, got %q", id)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("Expected 2 log lines, got %d: %s", len(lines), buf.String())
		}
		var done map[string]any
		json.Unmarshal([]byte(lines[1]), &done)
		if done["level"] != "warn" || done["status"] != float64(http.StatusNotFound) || done["request_id"] != id {
			t.Errorf("Unexpected request log %v", done)
		}
		if done["path"] != "/blogs/missing" {
			t.Errorf("Expected the path on the request log, got %v", done["path"])
		}
	})

	t.Run("Keeps an incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "edge-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get(HeaderRequestID); got != "edge-42" {
			t.Errorf("Expected edge-42, got %q", got)
		}
	})

	t.Run("Request logging off", func(t *testing.T) {
		buf.Reset()
		quiet := Middleware(l, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		quiet.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if buf.Len() != 0 {
			t.Errorf("Expected no request log, got %s", buf.String())
		}
	})
}
