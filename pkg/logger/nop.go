package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewNop returns a Logger that discards everything.
func NewNop() *Adapter {
	return &Adapter{
		zapLogger: &ZapLogger{
			logger: zap.NewNop(),
			level:  zapcore.InfoLevel,
		},
	}
}
