package admin

import (
	"go.uber.org/zap"
)

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to the Logger interface
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

func (z *zapLogger) Debug(msg string, args ...any) { z.sugar.Debugw(msg, args...) }
func (z *zapLogger) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z *zapLogger) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }

// GetLogger returns a child logger scoped by name
func (z *zapLogger) GetLogger(name string) Logger {
	return &zapLogger{sugar: z.sugar.Named(name)}
}

func defaultLogger() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return NewZapLogger(nil)
	}
	return NewZapLogger(l.Named("admin"))
}

// ResolveLogger returns the named logger from provider if any, falls back
// to logger and finally to a zap development logger.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) Logger {
	if provider != nil {
		if l := provider.GetLogger(name); l != nil {
			return l
		}
	}
	if logger != nil {
		return logger
	}
	return defaultLogger()
}
