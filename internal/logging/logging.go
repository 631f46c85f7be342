// Package logging builds the zap logger shared by the server and vcardctl.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger for level "none", "normal" or "debug". Info
// and debug records go to stdout, errors and above to stderr.
func New(level string) (*zap.Logger, error) {
	return build(level, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

func build(level string, low, high zapcore.WriteSyncer) (*zap.Logger, error) {
	var min zapcore.Level
	switch level {
	case "none":
		return zap.NewNop(), nil
	case "normal", "":
		min = zapcore.InfoLevel
	case "debug":
		min = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(ec)

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return min <= lvl && lvl < zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, low, lowPriority),
		zapcore.NewCore(encoder, high, highPriority),
	)
	return zap.New(core), nil
}
