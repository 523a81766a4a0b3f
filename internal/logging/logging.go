// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// #region options

// Options selects the log destination and verbosity.
type Options struct {
	Level string // debug, info, warn, error; "" = info
	File  string // "" logs to stderr; otherwise a rotated file sink
}

// #endregion options

// #region setup

// New builds a logger per the options. File sinks rotate at 50 MB and keep
// five generations.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	var core zapcore.Core
	if opts.File != "" {
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			Compress:   true,
		})
		encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		core = zapcore.NewCore(encoder, sink, level)
	} else {
		config := zap.NewDevelopmentEncoderConfig()
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder := zapcore.NewConsoleEncoder(config)
		core = zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	}

	return zap.New(core), nil
}

// #endregion setup
