package audit

import (
	"context"
	"log/slog"

	"votegate/pkg/platform/middleware/metadata"
	"votegate/pkg/platform/middleware/request"
	"votegate/pkg/platform/middleware/requesttime"
	"votegate/pkg/platform/privacy"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger provides structured audit logging with optional event emission.
// Use this in services to standardize audit logging patterns.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger.
// textLogger is used for structured logging; emitter is optional for event persistence.
// A nil *Logger is valid and discards everything.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log writes the event to the text log and emits it to the audit store.
// RequestID, Timestamp and ClientIP are filled from ctx when unset.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = request.GetRequestID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requesttime.Now(ctx)
	}
	if event.ClientIP == "" {
		if ip := metadata.ClientIP(ctx); ip != "" {
			event.ClientIP = privacy.AnonymizeIP(ip)
		}
	}
	l.logToText(ctx, event)
	l.emitToAudit(ctx, event)
}

func (l *Logger) logToText(ctx context.Context, event Event) {
	if l.textLogger == nil {
		return
	}
	args := []any{"event", event.Action, "log_type", "audit", "category", string(event.Category())}
	args = appendNonEmpty(args,
		"subject", event.Subject,
		"session_id", event.SessionID,
		"from_phase", event.FromPhase,
		"to_phase", event.ToPhase,
		"outcome", event.Outcome,
		"reason", event.Reason,
		"tx_hash", event.TxHash,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
	)
	l.textLogger.InfoContext(ctx, event.Action, args...)
}

func (l *Logger) emitToAudit(ctx context.Context, event Event) {
	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", event.Action,
		)
	}
}

// appendNonEmpty appends key/value pairs whose value is non-empty.
func appendNonEmpty(args []any, kv ...string) []any {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			args = append(args, kv[i], kv[i+1])
		}
	}
	return args
}
