package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pendingCandidates bounds the content fallback of MarkSent
const pendingCandidates = 5

// StatusResult tells how a status event was applied
type StatusResult string

const (
	StatusApplied StatusResult = "applied"
	StatusIgnored StatusResult = "ignored" // record exists but the status would not advance
	StatusMissing StatusResult = "missing"
)

// SentReceipt is a provider report that an outbound message left its queue
type SentReceipt struct {
	CorrelationKey string // provider message id
	Reference      string // client reference echoed back
	Content        string
	Success        bool
}

// MessageStore records inbound messages and moves outbound messages through
// their delivery states with conditional updates only
type MessageStore struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMessageStore creates a new message store adapter
func NewMessageStore(store storage.Store, m *metrics.Metrics, logger *zap.Logger) *MessageStore {
	return &MessageStore{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// RecordInbound always creates a new record
func (s *MessageStore) RecordInbound(ctx context.Context, session *models.TenantSession, sender, content string, timestamp time.Time, locale models.Locale) (*models.Message, error) {
	msg := &models.Message{
		SessionID: session.ID,
		Sender:    sender,
		Recipient: session.PhoneNumber,
		Content:   content,
		Direction: models.DirectionInbound,
		Status:    models.StatusReceived,
		Locale:    locale,
		Timestamp: timestamp,
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to record inbound message: %w", err)
	}

	s.metrics.RecordMessage(string(models.DirectionInbound))
	return msg, nil
}

// RecordOutbound creates the pending record of a reply before it is sent,
// carrying a fresh client reference
func (s *MessageStore) RecordOutbound(ctx context.Context, session *models.TenantSession, recipient, content string, locale models.Locale) (*models.Message, error) {
	msg := &models.Message{
		SessionID: session.ID,
		Sender:    session.PhoneNumber,
		Recipient: recipient,
		Content:   content,
		Direction: models.DirectionOutbound,
		Status:    models.StatusPending,
		Locale:    locale,
		Reference: uuid.NewString(),
		Timestamp: time.Now(),
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to record outbound message: %w", err)
	}

	s.metrics.RecordMessage(string(models.DirectionOutbound))
	return msg, nil
}

// MarkDispatched marks a reply as sent once the transport accepted it and
// stores the provider message id for later status events
func (s *MessageStore) MarkDispatched(ctx context.Context, session *models.TenantSession, messageID, providerMessageID string) error {
	applied, err := s.store.TransitionStatus(ctx, storage.StatusTransition{
		SessionID:         session.ID,
		MessageID:         messageID,
		To:                models.StatusSent,
		From:              models.StatusSent.Predecessors(),
		ProviderMessageID: providerMessageID,
		At:                time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to mark message dispatched: %w", err)
	}
	if applied || providerMessageID == "" {
		return nil
	}

	// a provider event already moved the record on; keep its status and
	// only attach the provider id
	_, err = s.store.TransitionStatus(ctx, storage.StatusTransition{
		SessionID:         session.ID,
		MessageID:         messageID,
		From:              anyOutboundStatus,
		ProviderMessageID: providerMessageID,
		At:                time.Now(),
	})
	return err
}

// MarkFailed marks a reply the transport refused
func (s *MessageStore) MarkFailed(ctx context.Context, session *models.TenantSession, messageID string) error {
	_, err := s.store.TransitionStatus(ctx, storage.StatusTransition{
		SessionID: session.ID,
		MessageID: messageID,
		To:        models.StatusFailed,
		From:      models.StatusFailed.Predecessors(),
		At:        time.Now(),
	})
	return err
}

// MarkSent applies a provider sent report. The record is matched by client
// reference or provider id first. Without a match the oldest pending outbound
// record of the session with the same content is taken; that fallback cannot
// tell apart two pending replies with identical text.
func (s *MessageStore) MarkSent(ctx context.Context, session *models.TenantSession, receipt SentReceipt) (StatusResult, error) {
	target := models.StatusSent
	if !receipt.Success {
		target = models.StatusFailed
	}

	for _, key := range correlationKeys(receipt.Reference, receipt.CorrelationKey) {
		result, err := s.transition(ctx, session, key, target, receipt.CorrelationKey)
		if err != nil {
			return "", err
		}
		if result != StatusMissing {
			s.logStatus(session, key, target, result)
			return result, nil
		}
	}

	if receipt.Content == "" {
		s.logStatus(session, receipt.CorrelationKey, target, StatusMissing)
		return StatusMissing, nil
	}

	candidates, err := s.store.FindPendingOutbound(ctx, session.ID, receipt.Content, pendingCandidates)
	if err != nil {
		return "", fmt.Errorf("failed to find pending outbound message: %w", err)
	}

	for _, candidate := range candidates {
		applied, err := s.store.TransitionStatus(ctx, storage.StatusTransition{
			SessionID:         session.ID,
			MessageID:         candidate.ID,
			To:                target,
			From:              []models.DeliveryStatus{models.StatusPending},
			ProviderMessageID: receipt.CorrelationKey,
			At:                time.Now(),
		})
		if err != nil {
			return "", err
		}
		if applied {
			s.logger.Info("Matched sent report by content",
				zap.String("sessionID", session.ID),
				zap.String("messageID", candidate.ID),
			)
			s.logStatus(session, candidate.ID, target, StatusApplied)
			return StatusApplied, nil
		}
	}

	s.logStatus(session, receipt.CorrelationKey, target, StatusMissing)
	return StatusMissing, nil
}

// ApplyStatusUpdate maps a provider status code and advances the matched
// outbound record. Regressions and unknown records are no-ops.
func (s *MessageStore) ApplyStatusUpdate(ctx context.Context, session *models.TenantSession, correlationKey string, code int) (StatusResult, error) {
	status := models.StatusFromCode(code)

	result, err := s.transition(ctx, session, correlationKey, status, "")
	if err != nil {
		return "", err
	}

	s.logStatus(session, correlationKey, status, result)
	return result, nil
}

func (s *MessageStore) transition(ctx context.Context, session *models.TenantSession, key string, to models.DeliveryStatus, providerMessageID string) (StatusResult, error) {
	if key == "" {
		return StatusMissing, nil
	}

	applied, err := s.store.TransitionStatus(ctx, storage.StatusTransition{
		SessionID:         session.ID,
		CorrelationKey:    key,
		To:                to,
		From:              to.Predecessors(),
		ProviderMessageID: providerMessageID,
		At:                time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to update message status: %w", err)
	}
	if applied {
		return StatusApplied, nil
	}

	_, err = s.store.FindOutbound(ctx, session.ID, key)
	switch {
	case err == nil:
		return StatusIgnored, nil
	case errors.Is(err, storage.ErrNotFound):
		return StatusMissing, nil
	default:
		return "", fmt.Errorf("failed to look up message: %w", err)
	}
}

func (s *MessageStore) logStatus(session *models.TenantSession, key string, status models.DeliveryStatus, result StatusResult) {
	s.metrics.RecordStatusUpdate(string(status), string(result))

	fields := []zap.Field{
		zap.String("sessionID", session.ID),
		zap.String("correlationKey", key),
		zap.String("status", string(status)),
	}
	switch result {
	case StatusApplied:
		s.logger.Debug("Message status updated", fields...)
	case StatusIgnored:
		s.logger.Info("Message status not advanced", fields...)
	default:
		s.logger.Info("No outbound message for status event", fields...)
	}
}

var anyOutboundStatus = []models.DeliveryStatus{
	models.StatusPending, models.StatusSent, models.StatusUnknown, models.StatusDelivered,
	models.StatusRead, models.StatusPlayed, models.StatusFailed, models.StatusError,
}

func correlationKeys(keys ...string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
