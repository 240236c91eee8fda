package logger

import (
	"fmt"
	"io"
	"os"

	"umkmorder/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	_defaultMaxSize    = 100
	_defaultMaxBackups = 7
	_defaultMaxAge     = 30
)

type ZapLogger struct {
	logger    *zap.Logger
	level     zapcore.Level
	requestID string

	output     io.Writer
	maxSize    int
	maxBackups int
	maxAge     int
}

// NewZapLogger writes JSON lines to stdout and, when cfg.Logger.Filename is
// set, to a lumberjack-rotated file. Options take precedence over cfg.
func NewZapLogger(cfg *config.Config, opts ...Option) (*ZapLogger, error) {
	const op = "logger.NewZapLogger"

	l := &ZapLogger{
		level:      zapcore.InfoLevel,
		output:     os.Stdout,
		maxSize:    orDefault(cfg.Logger.MaxSize, _defaultMaxSize),
		maxBackups: orDefault(cfg.Logger.MaxBackups, _defaultMaxBackups),
		maxAge:     orDefault(cfg.Logger.MaxAge, _defaultMaxAge),
	}

	if cfg.Logger.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Logger.Level)
		if err != nil {
			return nil, fmt.Errorf("%s: parse level: %w", op, err)
		}
		l.level = level
	}

	for _, opt := range opts {
		opt(l)
	}

	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(l.output)}
	if cfg.Logger.Filename != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    l.maxSize,
			MaxBackups: l.maxBackups,
			MaxAge:     l.maxAge,
			Compress:   true,
		}))
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(sinks...),
		zap.NewAtomicLevelAt(l.level),
	)

	l.logger = zap.New(core,
		zap.Fields(
			zap.String("service", cfg.App.Name),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.Env),
		),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)

	return l, nil
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func (l *ZapLogger) Zap() *zap.Logger {
	return l.logger
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
