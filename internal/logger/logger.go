package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and destination of the logger.
type Config struct {
	Level string
	Env   string
	// Path is a file path, or "stdout"/"stderr".
	Path string
}

// New builds a JSON logger. File destinations are created with their parent
// directory so the first run works on a clean machine.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	out := cfg.Path
	if out == "" {
		out = "stderr"
	}
	if out != "stdout" && out != "stderr" {
		if err := os.MkdirAll(filepath.Dir(out), 0700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{out},
		InitialFields: map[string]interface{}{
			"pid": os.Getpid(),
			"env": cfg.Env,
		},
	}
	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// ParseLevel maps a level name to a zap level, case-insensitively.
// Unknown names fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "dbg":
		return zapcore.DebugLevel
	case "info", "information":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error", "err":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
