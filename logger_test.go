package qbt

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		config   Config
		expected zerolog.Level
	}{
		{Config{}, zerolog.InfoLevel},
		{Config{LogLevel: "debug"}, zerolog.DebugLevel},
		{Config{LogLevel: "WARN"}, zerolog.WarnLevel},
		{Config{LogLevel: "error"}, zerolog.ErrorLevel},
		{Config{LogLevel: "error", Debug: true}, zerolog.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, logLevel(tt.config.withDefaults()))
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	logger := NewLogger(Config{
		LogFormat: "json",
		LogLevel:  "warn",
		LogFile:   filepath.Join(t.TempDir(), "qbt.log"),
	})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}
