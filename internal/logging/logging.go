// Package logging builds the zap logger of the demo server
package logging

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	admin "github.com/goliatone/go-bunadmin"
)

// Options for New
type Options struct {
	Level string
	// File enables JSON output rotated by lumberjack
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a console logger, or a rotated JSON file logger when
// opts.File is set.
func New(opts Options) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var (
		out     io.Writer = os.Stdout
		encoder zapcore.Encoder
	)

	if opts.File != "" {
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core, zap.AddCaller()), nil
}

// Provider hands out named admin loggers backed by one zap logger
type Provider struct {
	root *zap.Logger
}

func NewProvider(root *zap.Logger) *Provider {
	return &Provider{root: root}
}

func (p *Provider) GetLogger(name string) admin.Logger {
	return admin.NewZapLogger(p.root.Named(name))
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
