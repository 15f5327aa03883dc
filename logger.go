package qbt

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the logger described by cfg: console or json on stderr,
// plus a rotating file when cfg.LogFile is set.
func NewLogger(cfg Config) zerolog.Logger {
	cfg = cfg.withDefaults()

	var out io.Writer = os.Stderr
	if strings.EqualFold(cfg.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename: cfg.LogFile,
			MaxSize:  10,
			MaxAge:   15,
			Compress: true,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Str("component", "qbt").
		Logger().
		Level(logLevel(cfg))
}

func logLevel(cfg Config) zerolog.Level {
	if cfg.Debug {
		return zerolog.DebugLevel
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
