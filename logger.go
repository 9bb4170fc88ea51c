package retriever

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels accepted by LoggingConfig.Level.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// ErrUnknownLogFormat is returned for a LoggingConfig.Format other than
// ConsoleFormat or JSONFormat.
var ErrUnknownLogFormat = errors.New("unknown log format")

// Log formats accepted by LoggingConfig.Format.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// NewLogger builds a zap logger from cfg. An empty FilePath logs to stdout.
// Unknown levels fall back to info.
//
// The returned close func syncs the logger and releases the log file; call it
// once the logger is no longer used.
func NewLogger(cfg LoggingConfig) (*zap.Logger, func(), error) {
	var level zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case DebugLevel:
		level = zapcore.DebugLevel
	case WarnLevel:
		level = zapcore.WarnLevel
	case ErrorLevel:
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case JSONFormat:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case ConsoleFormat, "":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownLogFormat, cfg.Format)
	}

	path := "stdout"
	if cfg.FilePath != "" {
		path = cfg.FilePath
	}
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level), zap.AddCaller())
	return logger, func() {
		_ = logger.Sync()
		closeSink()
	}, nil
}
