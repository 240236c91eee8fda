package logger

import (
	"errors"
	"io"

	"go.uber.org/zap/zapcore"
)

type Option func(*ZapLogger)

// MaxSize overrides LOGGER_MAX_SIZE, in megabytes.
func MaxSize(size int) Option {
	return func(l *ZapLogger) {
		l.maxSize = size
	}
}

func MaxBackups(backups int) Option {
	return func(l *ZapLogger) {
		l.maxBackups = backups
	}
}

func MaxAge(days int) Option {
	return func(l *ZapLogger) {
		l.maxAge = days
	}
}

func SetLevel(level zapcore.Level) Option {
	return func(l *ZapLogger) {
		l.level = level
	}
}

// Output replaces stdout as the console sink. The rotated file sink, when
// configured, is kept.
func Output(w io.Writer) Option {
	return func(l *ZapLogger) {
		l.output = w
	}
}

func (l *ZapLogger) validate() error {
	var errs []error
	if l.maxSize <= 0 {
		errs = append(errs, errors.New("max size must be > 0"))
	}
	if l.maxBackups <= 0 {
		errs = append(errs, errors.New("max backups must be > 0"))
	}
	if l.maxAge <= 0 {
		errs = append(errs, errors.New("max age must be > 0"))
	}
	if l.output == nil {
		errs = append(errs, errors.New("output must not be nil"))
	}
	return errors.Join(errs...)
}
