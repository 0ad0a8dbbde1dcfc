package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output
// on stderr. Levels are colored when stderr is a terminal.
func NewApplicationLogger() (*zap.Logger, error) {
	return newConsoleLogger(term.IsTerminal(int(os.Stderr.Fd())), false)
}

// NewVerboseApplicationLogger is NewApplicationLogger with debug messages enabled.
func NewVerboseApplicationLogger() (*zap.Logger, error) {
	return newConsoleLogger(term.IsTerminal(int(os.Stderr.Fd())), true)
}

func newConsoleLogger(colored bool, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Sampling = nil
	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if colored {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
