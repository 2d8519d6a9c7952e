package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// These keys are shared by the mbim and qmi packages so log aggregation
// and querying works the same way across both dialects.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Dialect & Service
	// ========================================================================
	KeyDialect = "dialect" // "mbim" or "qmi"
	KeyService = "service" // service UUID (MBIM) or service name (QMI)

	// ========================================================================
	// Client & Transaction
	// ========================================================================
	KeyClientID      = "client_id"      // allocated client id
	KeyTransactionID = "transaction_id" // correlates request and reply
	KeyCID           = "cid"            // command id (MBIM) / message id (QMI)
	KeyMessageType   = "message_type"   // frame kind (Command, CommandDone, Indication, ...)

	// ========================================================================
	// Fragmentation
	// ========================================================================
	KeyFragmentTotal   = "fragment_total"
	KeyFragmentCurrent = "fragment_current"

	// ========================================================================
	// Outcome
	// ========================================================================
	KeyStatus     = "status"      // protocol/status numeric code
	KeyStatusMsg  = "status_msg"  // human-readable status message
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
	KeyErrorCode  = "error_code"  // numeric error code
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Dialect returns a slog.Attr for the protocol dialect ("mbim" or "qmi")
func Dialect(d string) slog.Attr {
	return slog.String(KeyDialect, d)
}

// Service returns a slog.Attr for the service identity
func Service(s string) slog.Attr {
	return slog.String(KeyService, s)
}

// ClientID returns a slog.Attr for the allocated client id
func ClientID(id uint32) slog.Attr {
	return slog.Uint64(KeyClientID, uint64(id))
}

// TransactionID returns a slog.Attr for the transaction id
func TransactionID(id uint32) slog.Attr {
	return slog.Uint64(KeyTransactionID, uint64(id))
}

// CID returns a slog.Attr for the command/message id
func CID(id uint32) slog.Attr {
	return slog.Uint64(KeyCID, uint64(id))
}

// MessageType returns a slog.Attr for the frame kind
func MessageType(t string) slog.Attr {
	return slog.String(KeyMessageType, t)
}

// FragmentTotal returns a slog.Attr for the total fragment count
func FragmentTotal(n uint32) slog.Attr {
	return slog.Uint64(KeyFragmentTotal, uint64(n))
}

// FragmentCurrent returns a slog.Attr for the current fragment index
func FragmentCurrent(n uint32) slog.Attr {
	return slog.Uint64(KeyFragmentCurrent, uint64(n))
}

// Status returns a slog.Attr for a protocol/status numeric code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Hex returns a slog.Attr rendering raw bytes as a hex string.
func Hex(key string, b []byte) slog.Attr {
	return slog.String(key, fmt.Sprintf("%x", b))
}
