package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

// requestIDCtxKey is the context key the middleware stores the request id
// under; the logger lifts it into every record written with a *Ctx method.
const requestIDCtxKey ctxKey = "request_id"

// WithRequestID returns a context carrying the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFrom extracts the request id from the context, if present.
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDCtxKey).(string); ok {
		return v
	}
	return ""
}

// CtxZapLogger is a context-aware zap wrapper. The module is bound at
// creation; call sites only pass the context.
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	cfg    *Config
}

// NewNop returns a logger that discards everything. Test use.
func NewNop() *CtxZapLogger {
	return &CtxZapLogger{base: zap.NewNop(), module: "nop"}
}

// DebugCtx logs at debug level, enriched from the context.
func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrich(ctx, fields)...)
}

// InfoCtx logs at info level, enriched from the context.
func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrich(ctx, fields)...)
}

// WarnCtx logs at warn level, enriched from the context.
func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrich(ctx, fields)...)
}

// ErrorCtx logs at error level, enriched from the context.
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Error(msg, l.enrich(ctx, fields)...)
}

// Debug logs without a context.
func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

// Info logs without a context.
func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

// Warn logs without a context.
func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

// Error logs without a context.
func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With returns a logger carrying preset fields.
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:   l.base.With(fields...),
		module: l.module,
		cfg:    l.cfg,
	}
}

// Zap exposes the underlying zap logger for third-party integration.
func (l *CtxZapLogger) Zap() *zap.Logger {
	return l.base
}

func (l *CtxZapLogger) enrich(ctx context.Context, fields []zap.Field) []zap.Field {
	enriched := make([]zap.Field, 0, len(fields)+2)
	if l.cfg != nil && l.cfg.AppName != "" {
		enriched = append(enriched, zap.String("app_name", l.cfg.AppName))
	}
	if id := RequestIDFrom(ctx); id != "" {
		enriched = append(enriched, zap.String("request_id", id))
	}
	return append(enriched, fields...)
}
