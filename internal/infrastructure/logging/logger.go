package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/config"
)

// ServiceName is attached to every record as the "service" field.
const ServiceName = "nowdrop"

// Logger is the root service logger. Subsystems take a named child via For.
type Logger struct {
	*zap.Logger
}

// Options selects the level, encoding and sinks of a Logger.
type Options struct {
	Level       string
	Development bool
	// OutputPaths defaults to stdout.
	OutputPaths []string
}

// New builds a logger. Production output is JSON without sampling or error
// stack traces; development output is colored console text.
func New(opts Options) (*Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.MessageKey = "message"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.Sampling = nil
	zcfg.DisableStacktrace = true
	if opts.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.InitialFields = map[string]interface{}{"service": ServiceName}
	if len(opts.OutputPaths) > 0 {
		zcfg.OutputPaths = opts.OutputPaths
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// FromConfig builds the logger for the logging section of the service
// config. An unusable level falls back to info.
func FromConfig(cfg config.LogConfig) *Logger {
	opts := Options{Level: cfg.Level, Development: cfg.Development}
	logger, err := New(opts)
	if err == nil {
		return logger
	}
	opts.Level = "info"
	if logger, err = New(opts); err == nil {
		return logger
	}
	return NewNop()
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// For returns the child logger of one subsystem. Records carry its name in
// the "logger" field.
func (l *Logger) For(component string) *zap.Logger {
	return l.Logger.Named(component)
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
