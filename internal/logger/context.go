package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for a single MBIM or QMI
// transaction.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	Dialect   string    // "mbim" or "qmi"
	Service   string    // service UUID (MBIM) or service name (QMI)
	ClientID  uint32    // allocated client id, 0 if not yet allocated
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for the given dialect ("mbim" or
// "qmi").
func NewLogContext(dialect string) *LogContext {
	return &LogContext{
		Dialect:   dialect,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		Dialect:   lc.Dialect,
		Service:   lc.Service,
		ClientID:  lc.ClientID,
		StartTime: lc.StartTime,
	}
}

// WithService returns a copy with the service identity set
func (lc *LogContext) WithService(service string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Service = service
	}
	return clone
}

// WithClientID returns a copy with the client id set
func (lc *LogContext) WithClientID(clientID uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ClientID = clientID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
