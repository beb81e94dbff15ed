package messaging

import (
	"log/slog"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// HandlerFunc adapts a function to the shared.EventHandler interface.
type HandlerFunc struct {
	name string
	fn   func(event shared.Event) error
}

// NewHandlerFunc wraps fn as a named event handler.
func NewHandlerFunc(name string, fn func(event shared.Event) error) HandlerFunc {
	return HandlerFunc{name: name, fn: fn}
}

// Handle implements shared.EventHandler.
func (h HandlerFunc) Handle(event shared.Event) error {
	return h.fn(event)
}

// Name implements shared.EventHandler.
func (h HandlerFunc) Name() string {
	return h.name
}

// AuditLogHandler writes every event to the structured log. Registered
// with SubscribeAll, it gives operators a flat trail of everything the
// system decided.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler.
func NewAuditLogHandler(logger *slog.Logger) *AuditLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogHandler{logger: logger}
}

// Handle implements shared.EventHandler.
func (h *AuditLogHandler) Handle(event shared.Event) error {
	h.logger.Info("domain event",
		"event_type", event.EventType(),
		"aggregate_id", event.AggregateID(),
		"occurred_at", event.OccurredAt(),
		"payload", event.Payload(),
	)
	return nil
}

// Name implements shared.EventHandler.
func (h *AuditLogHandler) Name() string {
	return "audit_log"
}
