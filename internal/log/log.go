// Package log builds the zap-backed logr.Logger used across pkghealth.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger named service writing to stderr. format is "json" or
// "text"; level is one of debug, info, warn or error. The returned cleanup
// function flushes buffered entries and should run before the program exits.
func New(service, format, level string) (logr.Logger, func() error, error) {
	return NewWithSink(os.Stderr, service, format, level)
}

// NewWithSink is New with an explicit output.
func NewWithSink(sink io.Writer, service, format, level string) (logr.Logger, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), func() error { return nil }, err
	}

	var enc zapcore.Encoder
	switch strings.ToLower(format) {
	case "", "json":
		enc = zapcore.NewJSONEncoder(encoderConfig())
	case "text", "console":
		enc = zapcore.NewConsoleEncoder(encoderConfig())
	default:
		return logr.Discard(), func() error { return nil }, fmt.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(sink)), zap.NewAtomicLevelAt(lvl))
	zapLogger := zap.New(core)
	return zapr.NewLogger(zapLogger).WithName(service), zapLogger.Sync, nil
}

// ParseLevel maps a level name to a zap level. debug enables V(1) and V(2).
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		// zapr maps V(n) to zap level -n.
		return zapcore.Level(-2), nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

func encoderConfig() zapcore.EncoderConfig {
	conf := zap.NewProductionEncoderConfig()
	conf.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	conf.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if level >= zapcore.WarnLevel {
			enc.AppendString(level.String())
			return
		}
		enc.AppendString(fmt.Sprintf("info-%d", -int8(level)))
	}
	return conf
}
