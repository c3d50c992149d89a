// Package logging builds the zap logger shared by the webkvm commands.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	Level      string `help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error" env:"WEBKVM_LOG_LEVEL"`
	Format     string `help:"Console format (console, json)" default:"console" enum:"console,json" env:"WEBKVM_LOG_FORMAT"`
	File       string `help:"Optional log file, rotated" env:"WEBKVM_LOG_FILE"`
	MaxSizeMB  int    `help:"Rotate the log file after this many megabytes" default:"20" env:"WEBKVM_LOG_MAX_SIZE"`
	MaxBackups int    `help:"Rotated log files to keep" default:"3" env:"WEBKVM_LOG_MAX_BACKUPS"`
}

// New builds a logger writing to stderr and, when configured, to a rotated JSON file.
// The returned closer flushes and releases the file.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	return NewWithWriter(opts, zapcore.Lock(os.Stderr))
}

// NewWithWriter builds a logger whose console output goes to w.
func NewWithWriter(opts Options, w zapcore.WriteSyncer) (*zap.Logger, io.Closer, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(opts.Level)))); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder(opts.Format), w, level)}

	var file *lumberjack.Logger
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(encoder("json"), zapcore.AddSync(file), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("webkvm")
	return logger, closer{logger: logger, file: file}, nil
}

// encoder returns a JSON encoder or a single-line console encoder.
func encoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(cfg)
}

type closer struct {
	logger *zap.Logger
	file   *lumberjack.Logger
}

// Close syncs the logger and closes the rotated file.
func (c closer) Close() error {
	_ = c.logger.Sync()
	if c.file != nil {
		return c.file.Close()
	}
	return nil
}
