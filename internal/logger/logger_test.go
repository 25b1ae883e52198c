package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DBG", zapcore.DebugLevel},
		{"Info", zapcore.InfoLevel},
		{"information", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" WARN ", zapcore.WarnLevel},
		{"err", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "veterimap.log")
	l, err := New(Config{Level: "warn", Env: "test", Path: path})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", zap.String("path", "/api/me"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"timestamp":`)
	assert.Contains(t, out, `"env":"test"`)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}
