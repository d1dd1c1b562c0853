// Package logutil builds the process logger from the log section of the
// configuration. Logs go to stderr or to a rotating file; user-visible
// status lines never go through here.
package logutil

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tuannm99/mydb/internal"
)

func New(cfg internal.LogConfig) (*zap.Logger, error) {
	level, err := getLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(getEncoder(cfg.Format), getSyncer(cfg), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Nop discards everything; used by tests and library callers without config.
func Nop() *zap.Logger { return zap.NewNop() }

func getLevel(s string) (zap.AtomicLevel, error) {
	if s == "" {
		return zap.NewAtomicLevelAt(zapcore.WarnLevel), nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("logutil: invalid level %q: %w", s, err)
	}
	return zap.NewAtomicLevelAt(l), nil
}

func getEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

func getSyncer(cfg internal.LogConfig) zapcore.WriteSyncer {
	if cfg.Filename == "" {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	})
}
