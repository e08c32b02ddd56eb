package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Flag to track if JSON output is enabled
	JSONOutput bool
)

func init() {
	// Initialize with a safe no-op logger at package load time
	// This prevents nil pointer panics if logger is used before Initialize() is called
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Generated source goes to files or
// stdout, so log lines always go to stderr.
func Initialize(jsonOutput bool, verbosity int) error {
	l, err := New(os.Stderr, jsonOutput, verbosity)
	if err != nil {
		return err
	}
	JSONOutput = jsonOutput
	Logger = l
	return nil
}

// New builds a sugared logger writing to w at the level derived from verbosity.
func New(w io.Writer, jsonOutput bool, verbosity int) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(verbosity))

	if jsonOutput {
		// JSON structured output for machine consumption (CI logs)
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			level,
		)
		return zap.New(core, zap.AddCaller()).Sugar(), nil
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar(), nil
}

// Named returns a child of the global logger.
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
