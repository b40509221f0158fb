package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ctxKey string

const (
	// LoggerKey stores the request-scoped logger in gin.Context and context.Context.
	LoggerKey = "logger"
	// TraceIDKey stores the trace id in gin.Context.
	TraceIDKey = "traceID"

	loggerCtxKey  ctxKey = LoggerKey
	traceIDCtxKey ctxKey = TraceIDKey
	donorIDCtxKey ctxKey = "donor_id"
)

func WithLogger(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, l)
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey, traceID)
}

// WithDonorID tags ctx so that loggers derived from it carry donor_id.
func WithDonorID(ctx context.Context, donorID string) context.Context {
	return context.WithValue(ctx, donorIDCtxKey, donorID)
}

// FromGin returns a request-scoped logger from gin.Context if present,
// otherwise returns the provided base logger.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get(LoggerKey); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns a logger from context if set, otherwise attempts to enrich
// base with trace_id/donor_id from context values.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	lg := base
	if l, ok := ctx.Value(loggerCtxKey).(*zap.SugaredLogger); ok && l != nil {
		lg = l
	} else if tid, ok := ctx.Value(traceIDCtxKey).(string); ok && tid != "" {
		lg = lg.With("trace_id", tid)
	}
	if did, ok := ctx.Value(donorIDCtxKey).(string); ok && did != "" {
		lg = lg.With("donor_id", did)
	}
	return lg
}

// TraceID returns the trace id stored by WithTraceID, or "".
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tid, _ := ctx.Value(traceIDCtxKey).(string)
	return tid
}
