package services

import (
	"context"
	"fmt"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
)

// HandlerFunc processes one event for a resolved tenant
type HandlerFunc func(ctx context.Context, session *models.TenantSession, event Event) error

// Dispatcher routes a verified event to the single handler of its kind
type Dispatcher struct {
	handlers map[models.EventKind]HandlerFunc
}

// NewDispatcher builds the kind -> handler table
func NewDispatcher(h *EventHandlers) *Dispatcher {
	return &Dispatcher{
		handlers: map[models.EventKind]HandlerFunc{
			models.EventInboundMessage: h.HandleInbound,
			models.EventOutboundSent:   h.HandleOutboundSent,
			models.EventStatusUpdate:   h.HandleStatusUpdate,
		},
	}
}

// Handles reports whether kind has a handler
func (d *Dispatcher) Handles(kind models.EventKind) bool {
	_, ok := d.handlers[kind]
	return ok
}

// Dispatch runs the handler of event.Kind synchronously
func (d *Dispatcher) Dispatch(ctx context.Context, session *models.TenantSession, event Event) error {
	handler, ok := d.handlers[event.Kind]
	if !ok {
		return fmt.Errorf("no handler for event kind %q", event.Kind)
	}
	return handler(ctx, session, event)
}
