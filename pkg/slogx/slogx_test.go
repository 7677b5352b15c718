package slogx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/idkit/pkg/idx"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, slogx.ParseLevel(in), in)
	}
}

// New replaces the slog default, so these tests do not run in parallel.
func TestNew(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slogx.New(slogx.Config{Service: "idstub", Version: "v1", Env: "test", Level: "warn", Writer: &buf})

		logger.Info("dropped")
		logger.Warn("kept", "k", "v")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		require.Equal(t, "kept", lines[0]["msg"])
		require.Equal(t, "idstub", lines[0]["service"])
		require.Equal(t, "v1", lines[0]["version"])
		require.Equal(t, "v", lines[0]["k"])
		require.Same(t, logger, slog.Default())
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		slogx.New(slogx.Config{Service: "idkit-demo", Format: "text", Writer: &buf}).Info("hello")
		require.Contains(t, buf.String(), "msg=hello")
		require.Contains(t, buf.String(), "service=idkit-demo")
	})
}

func TestFromContextDefault(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Same(t, slog.Default(), slogx.FromContext(r.Context()))
	require.Empty(t, slogx.RequestID(r.Context()))
}

func TestHTTPMiddleware(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, status int, reqID string) (*httptest.ResponseRecorder, map[string]any, string) {
		t.Helper()

		var buf bytes.Buffer
		base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		var seen string
		h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = slogx.RequestID(r.Context())
			slogx.FromContext(r.Context()).Debug("inside")
			w.WriteHeader(status)
			_, _ = w.Write([]byte("body"))
		}))

		r := httptest.NewRequest(http.MethodGet, "/idsite/callback?jwtResponse=secret.token.value", nil)
		if reqID != "" {
			r.Header.Set(slogx.RequestIDHeader, reqID)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		require.NotContains(t, buf.String(), "secret.token.value")
		lines := decodeLines(t, &buf)
		require.Len(t, lines, 2)
		require.Equal(t, "inside", lines[0]["msg"])
		require.Equal(t, lines[1]["req_id"], lines[0]["req_id"])
		return rec, lines[1], seen
	}

	t.Run("generated request id", func(t *testing.T) {
		t.Parallel()

		rec, line, seen := serve(t, http.StatusOK, "")
		id := rec.Header().Get(slogx.RequestIDHeader)
		_, err := idx.Parse(id)
		require.NoError(t, err)
		require.Equal(t, id, seen)
		require.Equal(t, id, line["req_id"])
		require.Equal(t, "INFO", line["level"])
		require.Equal(t, "/idsite/callback", line["path"])
		require.EqualValues(t, 200, line["status"])
		require.EqualValues(t, 4, line["bytes"])
	})

	t.Run("caller request id", func(t *testing.T) {
		t.Parallel()

		rec, line, _ := serve(t, http.StatusBadRequest, "abc-123")
		require.Equal(t, "abc-123", rec.Header().Get(slogx.RequestIDHeader))
		require.Equal(t, "abc-123", line["req_id"])
		require.Equal(t, "WARN", line["level"])
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		_, line, _ := serve(t, http.StatusServiceUnavailable, "")
		require.Equal(t, "ERROR", line["level"])
		require.EqualValues(t, 503, line["status"])
	})
}
