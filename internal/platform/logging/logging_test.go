package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()}))
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func TestFromContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, slog.Default(), FromContext(nil))
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	assert.Same(t, logger, FromContext(WithContext(context.Background(), logger)))
}

func TestWith_RequestAndCorrelationIDs(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithContext(context.Background(), jsonLogger(&buf))
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithCorrelationID(ctx, "corr-789")
	ctx = With(ctx, slog.String("driver", "sqlite"))

	FromContext(ctx).Info("loaded quotes", slog.Int("count", 5))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "corr-789", entry["correlation_id"])
	assert.Equal(t, "sqlite", entry["driver"])
	assert.InDelta(t, 5, entry["count"], 0)
}

func TestNewWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{"json", func(t *testing.T, out string) {
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &entry))
			assert.Equal(t, "quotekeeper", entry["service_name"])
			assert.Equal(t, "1.0.0", entry["service_version"])
		}},
		{"text", func(t *testing.T, out string) {
			assert.Contains(t, out, "service_name=quotekeeper")
		}},
		{"pretty", func(t *testing.T, out string) {
			assert.Contains(t, out, "INFO")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer

			logger := NewWithWriter(&Config{Level: "info", Format: tt.format, Service: "quotekeeper", Version: "1.0.0"}, &buf)
			logger.Info("quotes synced")

			assert.Contains(t, buf.String(), "quotes synced")
			tt.check(t, buf.String())
		})
	}
}

func TestNewWithWriter_RollingFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "quotekeeper.log")

	var console bytes.Buffer

	logger := NewWithWriter(&Config{
		Level:  "info",
		Format: "pretty",
		File: FileConfig{
			Enabled:    true,
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 1,
			MaxAgeDays: 1,
		},
	}, &console)

	logger.Info("sync cycle finished", slog.String("password", "hunter2"))

	assert.Contains(t, console.String(), "sync cycle finished")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"sync cycle finished"`)
	assert.NotContains(t, string(content), "hunter2")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, slogToCharmLevel(LevelTrace))
	assert.Equal(t, log.DebugLevel, slogToCharmLevel(slog.LevelDebug))
	assert.Equal(t, log.InfoLevel, slogToCharmLevel(slog.LevelInfo))
	assert.Equal(t, log.WarnLevel, slogToCharmLevel(slog.LevelWarn))
	assert.Equal(t, log.ErrorLevel, slogToCharmLevel(slog.LevelError))
}

func TestTrace_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "debug", Format: "json"}, &buf)
	Trace(context.Background(), logger, "hidden detail")
	assert.Empty(t, buf.String())

	logger = NewWithWriter(&Config{Level: "trace", Format: "json"}, &buf)
	Trace(context.Background(), logger, "rejected import record", slog.Int("index", 2))
	assert.Contains(t, buf.String(), "rejected import record")
	assert.Contains(t, buf.String(), `"index":2`)
}

func TestMultiHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer

	h := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, h.Enabled(context.Background(), LevelTrace))

	logger := slog.New(h).With(slog.String("component", "reconciler")).WithGroup("sync")
	logger.Debug("fetched", slog.Int("remote", 3))
	logger.Warn("push failed")

	assert.Contains(t, debugBuf.String(), `"msg":"fetched"`)
	assert.Contains(t, debugBuf.String(), `"sync":{"remote":3}`)
	assert.NotContains(t, warnBuf.String(), "fetched")
	assert.Contains(t, warnBuf.String(), `"msg":"push failed"`)
	assert.Contains(t, warnBuf.String(), `"component":"reconciler"`)
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		redact bool
	}{
		{"redis password", "redis_password", "s3cret", true},
		{"password", "password", "s3cret", true},
		{"authorization header", "authorization", "Bearer abc123", true},
		{"bearer value under any key", "header", "Bearer abc123", true},
		{"basic auth value", "header", "Basic dXNlcjpwYXNz", true},
		{"secret prefix", "secret_feed_key", "abc", true},
		{"redis url with credentials", "addr", "redis://user:pw@cache:6379/0", true},
		{"redis url without credentials", "addr", "redis://cache:6379/0", false},
		{"category", "category", "life", false},
		{"quote text", "text", "Simplicity is the ultimate sophistication.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			jsonLogger(&buf).Info("test", slog.String(tt.key, tt.value))

			out := buf.String()
			assert.Contains(t, out, tt.key)
			if tt.redact {
				assert.NotContains(t, out, tt.value)
			} else {
				assert.Contains(t, out, tt.value)
			}
		})
	}
}
