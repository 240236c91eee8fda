package logger

import (
	"context"
	"fmt"
	"time"

	"umkmorder/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Adapter implements Logger on top of ZapLogger.
type Adapter struct {
	zapLogger *ZapLogger
}

var _ Logger = (*Adapter)(nil)

func NewAdapter(cfg *config.Config, opts ...Option) (*Adapter, error) {
	zl, err := NewZapLogger(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("logger.NewAdapter: %w", err)
	}
	return &Adapter{zapLogger: zl}, nil
}

// derive returns an adapter writing through z that keeps the level and the
// request id already attached to a.
func (a *Adapter) derive(z *zap.Logger, requestID string) *Adapter {
	return &Adapter{zapLogger: &ZapLogger{
		logger:    z,
		level:     a.zapLogger.level,
		requestID: requestID,
	}}
}

func (a *Adapter) sugar() *zap.SugaredLogger { return a.zapLogger.Zap().Sugar() }

func (a *Adapter) Debug(msg string, args ...any) { a.sugar().Debugw(msg, args...) }
func (a *Adapter) Info(msg string, args ...any)  { a.sugar().Infow(msg, args...) }
func (a *Adapter) Warn(msg string, args ...any)  { a.sugar().Warnw(msg, args...) }
func (a *Adapter) Error(msg string, args ...any) { a.sugar().Errorw(msg, args...) }

func (a *Adapter) Debugw(msg string, keysAndValues ...any) { a.sugar().Debugw(msg, keysAndValues...) }
func (a *Adapter) Infow(msg string, keysAndValues ...any)  { a.sugar().Infow(msg, keysAndValues...) }
func (a *Adapter) Warnw(msg string, keysAndValues ...any)  { a.sugar().Warnw(msg, keysAndValues...) }
func (a *Adapter) Errorw(msg string, keysAndValues ...any) { a.sugar().Errorw(msg, keysAndValues...) }

// Ctx tags the returned logger with the request id carried by ctx, if any.
func (a *Adapter) Ctx(ctx context.Context) Logger {
	requestID := a.zapLogger.GetRequestID(ctx)
	if requestID == "" {
		requestID = a.zapLogger.requestID
	}
	return a.derive(a.zapLogger.NewContextLogger(ctx), requestID)
}

func (a *Adapter) With(args ...any) Logger {
	return a.derive(a.zapLogger.Zap().With(toZapFields(args)...), a.zapLogger.requestID)
}

func (a *Adapter) WithGroup(name string) Logger {
	return a.derive(a.zapLogger.Zap().With(zap.Namespace(name)), a.zapLogger.requestID)
}

func (a *Adapter) Log(level Level, msg string, attrs ...Attr) {
	write(a.zapLogger.Zap(), level, msg, attrs)
}

func (a *Adapter) LogAttrs(ctx context.Context, level Level, msg string, attrs ...Attr) {
	write(a.zapLogger.NewContextLogger(ctx), level, msg, attrs)
}

func write(z *zap.Logger, level Level, msg string, attrs []Attr) {
	zapLevel := level.zap()
	if ce := z.Check(zapLevel, msg); ce != nil {
		ce.Write(toZapFieldsFromAttrs(attrs)...)
	}
}

func (a *Adapter) Level() Level {
	switch a.zapLogger.level {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.WarnLevel:
		return WarnLevel
	case zapcore.ErrorLevel:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (a *Adapter) Sync() error { return a.zapLogger.Sync() }

func (a *Adapter) GenerateRequestID() string { return a.zapLogger.GenerateRequestID() }

func (a *Adapter) GetRequestID(ctx context.Context) string { return a.zapLogger.GetRequestID(ctx) }

func (a *Adapter) WithRequestID(ctx context.Context, requestID string) context.Context {
	return a.zapLogger.WithRequestID(ctx, requestID)
}

func (a *Adapter) LogRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	a.zapLogger.LogRequest(ctx, method, route, status, elapsed)
}

func (l Level) zap() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// toZapFields converts sugared key/value pairs. A trailing key without a
// value is kept with a placeholder.
func toZapFields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("!BADKEY(%v)", args[i])
		}
		var value any = "<missing>"
		if i+1 < len(args) {
			value = args[i+1]
		}
		fields = append(fields, toZapField(Attr{Key: key, Value: value}))
	}
	return fields
}

func toZapFieldsFromAttrs(attrs []Attr) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, toZapField(a))
	}
	return fields
}

func toZapField(a Attr) zap.Field {
	switch v := a.Value.(type) {
	case string:
		return zap.String(a.Key, v)
	case int:
		return zap.Int(a.Key, v)
	case int64:
		return zap.Int64(a.Key, v)
	case bool:
		return zap.Bool(a.Key, v)
	case time.Time:
		return zap.Time(a.Key, v)
	case time.Duration:
		return zap.Duration(a.Key, v)
	case error:
		return zap.NamedError(a.Key, v)
	default:
		return zap.Any(a.Key, v)
	}
}
