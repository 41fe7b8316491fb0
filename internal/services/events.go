package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/responder"
	"github.com/Ananth-NQI/clinicbot-backend/internal/transport"
	"go.uber.org/zap"
)

// ResponseEngine composes the reply to an inbound text
type ResponseEngine interface {
	Classify(text string, clinic *models.ClinicConfiguration, locale models.Locale) responder.Intent
	Respond(text string, clinic *models.ClinicConfiguration, locale models.Locale) (string, bool)
}

// Event is a verified webhook event of a known kind
type Event struct {
	Kind      models.EventKind
	Name      string
	Data      json.RawMessage
	Timestamp time.Time
}

// EventHandlers holds the per-kind handlers the dispatcher routes to
type EventHandlers struct {
	messages  *MessageStore
	responses ResponseEngine
	outbound  *Outbound
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewEventHandlers creates the event handlers
func NewEventHandlers(messages *MessageStore, responses ResponseEngine, outbound *Outbound, m *metrics.Metrics, logger *zap.Logger) *EventHandlers {
	return &EventHandlers{
		messages:  messages,
		responses: responses,
		outbound:  outbound,
		metrics:   m,
		logger:    logger,
	}
}

// HandleInbound records a patient message and answers it. Store and transport
// failures are logged; the event still counts as handled.
func (h *EventHandlers) HandleInbound(ctx context.Context, session *models.TenantSession, event Event) error {
	var data models.InboundMessageData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid inbound payload: %w", err)
	}

	if data.FromMe {
		h.logger.Debug("Ignoring echo of own message", zap.String("sessionID", session.ID))
		return nil
	}

	content := data.Content()
	timestamp := models.UnixTime(data.Timestamp)
	if timestamp.IsZero() {
		timestamp = event.Timestamp
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	clinic := session.Configuration()
	preference := ""
	if clinic != nil {
		preference = clinic.Language
	}
	locale := responder.SelectLocale(preference, content)

	if _, err := h.messages.RecordInbound(ctx, session, data.From, content, timestamp, locale); err != nil {
		h.logger.Error("Failed to record inbound message",
			zap.String("sessionID", session.ID),
			zap.Error(err),
		)
	}

	intent := h.responses.Classify(content, clinic, locale)
	h.metrics.RecordIntent(string(intent))
	h.logger.Info("Inbound message",
		zap.String("sessionID", session.ID),
		zap.String("locale", string(locale)),
		zap.String("intent", string(intent)),
	)

	reply, ok := h.responses.Respond(content, clinic, locale)
	if !ok {
		return nil
	}

	recipient, err := transport.NormalizeRecipient(data.From)
	if err != nil {
		h.logger.Warn("Cannot reply to sender",
			zap.String("sessionID", session.ID),
			zap.String("from", data.From),
			zap.Error(err),
		)
		return nil
	}

	h.reply(ctx, session, recipient, reply, locale)
	return nil
}

func (h *EventHandlers) reply(ctx context.Context, session *models.TenantSession, recipient, text string, locale models.Locale) {
	fields := []zap.Field{zap.String("sessionID", session.ID), zap.String("to", recipient)}

	record, err := h.messages.RecordOutbound(ctx, session, recipient, text, locale)
	if err != nil {
		h.logger.Error("Failed to record outbound message", append(fields, zap.Error(err))...)
	}

	reference := ""
	if record != nil {
		reference = record.Reference
	}

	receipt, err := h.outbound.Send(ctx, session.APICredential, recipient, text, reference)
	if err != nil {
		h.logger.Error("Failed to send reply", append(fields, zap.Error(err))...)
		if record != nil {
			if err := h.messages.MarkFailed(ctx, session, record.ID); err != nil {
				h.logger.Error("Failed to mark reply failed", append(fields, zap.Error(err))...)
			}
		}
		return
	}

	h.logger.Info("Reply sent", append(fields, zap.String("messageID", receipt.MessageID))...)
	if record != nil {
		if err := h.messages.MarkDispatched(ctx, session, record.ID, receipt.MessageID); err != nil {
			h.logger.Error("Failed to mark reply sent", append(fields, zap.Error(err))...)
		}
	}
}

// HandleOutboundSent applies the provider's sent report
func (h *EventHandlers) HandleOutboundSent(ctx context.Context, session *models.TenantSession, event Event) error {
	var data models.OutboundSentData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid outbound-sent payload: %w", err)
	}

	_, err := h.messages.MarkSent(ctx, session, SentReceipt{
		CorrelationKey: data.ID,
		Reference:      data.Reference,
		Content:        data.Content(),
		Success:        data.Succeeded(),
	})
	return err
}

// HandleStatusUpdate applies a delivery acknowledgement, matching by provider
// id and then by client reference
func (h *EventHandlers) HandleStatusUpdate(ctx context.Context, session *models.TenantSession, event Event) error {
	var data models.StatusUpdateData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid status-update payload: %w", err)
	}

	keys := correlationKeys(data.ID, data.Reference)
	if len(keys) == 0 {
		h.logger.Info("Status update without correlation key", zap.String("sessionID", session.ID))
		return nil
	}

	for _, key := range keys {
		result, err := h.messages.ApplyStatusUpdate(ctx, session, key, data.StatusCode())
		if err != nil || result != StatusMissing {
			return err
		}
	}
	return nil
}
