// Package logger builds the process zap logger.
package logger

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the log verbosity and where debug/info lines go. Warnings
// and errors always go to stderr.
type Config struct {
	Debug bool `json:"debug" yaml:"debug" koanf:"debug"`
	// Output is "stdout" or "stderr".
	Output string `json:"output" yaml:"output" koanf:"output"`
}

func syncer(name string) (zapcore.WriteSyncer, error) {
	switch name {
	case "stdout", "":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	default:
		return nil, errors.Errorf("unknown log output %q", name)
	}
}

// GetZapLogger returns an instance of zap logger
func GetZapLogger(cfg Config) (*zap.Logger, error) {
	out, err := syncer(cfg.Output)
	if err != nil {
		return nil, err
	}
	return NewZapLogger(cfg.Debug, out, zapcore.Lock(os.Stderr)), nil
}

// NewZapLogger builds a tee core logger: debug (when enabled) and info to
// out, warn/error/fatal to errOut.
func NewZapLogger(debug bool, out, errOut zapcore.WriteSyncer) *zap.Logger {
	// debug and info level enabler
	debugInfoLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level == zapcore.DebugLevel || level == zapcore.InfoLevel
	})

	// info level enabler
	infoLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level == zapcore.InfoLevel
	})

	// warn, error and fatal level enabler
	warnErrorFatalLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level >= zapcore.WarnLevel
	})

	var core zapcore.Core
	if debug {
		core = zapcore.NewTee(
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()), out, debugInfoLevel),
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()), errOut, warnErrorFatalLevel),
		)
	} else {
		core = zapcore.NewTee(
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), out, infoLevel),
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), errOut, warnErrorFatalLevel),
		)
	}

	return zap.New(core)
}
