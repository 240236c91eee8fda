package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey struct{}

func (l *ZapLogger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

func (l *ZapLogger) GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(contextKey{}).(string); ok {
		return requestID
	}
	return ""
}

// NewContextLogger tags entries with the request ID carried by ctx, unless
// this logger is already tagged with it.
func (l *ZapLogger) NewContextLogger(ctx context.Context) *zap.Logger {
	if requestID := l.GetRequestID(ctx); requestID != "" && requestID != l.requestID {
		return l.logger.With(zap.String("request_id", requestID))
	}
	return l.logger
}

// LogRequest writes the access log line. 5xx responses are logged at error
// level and 4xx at warn.
func (l *ZapLogger) LogRequest(
	ctx context.Context,
	method, route string,
	status int,
	duration time.Duration,
) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("route", route),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	}

	log := l.NewContextLogger(ctx)
	switch {
	case status >= 500:
		log.Error("request", fields...)
	case status >= 400:
		log.Warn("request", fields...)
	default:
		log.Info("request", fields...)
	}
}

func (l *ZapLogger) GenerateRequestID() string {
	return uuid.NewString()
}
