package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	loggerEncoding   = "console"
	loggerOutputPath = "stderr"
	loggerTimeKey    = "time"
	loggerCallerKey  = "caller"
)

// NewApplicationLogger builds the console logger written to standard error. Standard output stays
// reserved for answers. A verbose logger logs debug messages with timestamps and callers and is
// never sampled, so every step of a session is visible.
func NewApplicationLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = loggerEncoding
	config.OutputPaths = []string{loggerOutputPath}
	config.ErrorOutputPaths = []string{loggerOutputPath}
	config.DisableStacktrace = true
	config.DisableCaller = !verbose
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.StacktraceKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.CallerKey = ""

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.Sampling = nil
		config.EncoderConfig.TimeKey = loggerTimeKey
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.CallerKey = loggerCallerKey
		config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	return config.Build()
}
