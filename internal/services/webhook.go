package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Ananth-NQI/clinicbot-backend/internal/constants"
	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Authenticator checks an event against the resolved tenant's secret
type Authenticator interface {
	Verify(rawBody []byte, signature models.Signature, tenantSecret string) bool
}

// WebhookResult is the outcome of an acknowledged event
type WebhookResult struct {
	Outcome   string
	Kind      models.EventKind
	SessionID string
}

// WebhookService runs the provider event pipeline: parse, resolve the tenant,
// verify, then dispatch
type WebhookService struct {
	resolver      *TenantResolver
	authenticator Authenticator
	dispatcher    *Dispatcher
	validate      *validator.Validate
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewWebhookService creates the webhook pipeline
func NewWebhookService(resolver *TenantResolver, authenticator Authenticator, dispatcher *Dispatcher, m *metrics.Metrics, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		resolver:      resolver,
		authenticator: authenticator,
		dispatcher:    dispatcher,
		validate:      validator.New(),
		metrics:       m,
		logger:        logger,
	}
}

// Process handles one webhook request. Only a malformed envelope, a missing
// signature or a failed verification return an error; everything after
// verification is logged and acknowledged.
func (s *WebhookService) Process(ctx context.Context, rawBody []byte, signature models.Signature) (WebhookResult, error) {
	var envelope models.WebhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		s.metrics.RecordWebhookEvent(kindLabel(""), metrics.OutcomeRejected)
		return WebhookResult{}, NewServiceError(constants.ErrCodeInvalidEnvelope, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err))
	}
	if err := s.validate.Struct(envelope); err != nil {
		s.metrics.RecordWebhookEvent(kindLabel(""), metrics.OutcomeRejected)
		return WebhookResult{}, NewServiceError(constants.ErrCodeInvalidEnvelope, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err))
	}
	if signature.Token == "" {
		s.metrics.RecordWebhookEvent(kindLabel(envelope.Event), metrics.OutcomeRejected)
		return WebhookResult{}, NewServiceError(constants.ErrCodeMissingSignature, ErrMissingSignature)
	}

	// the event runs to completion even if the provider hangs up
	ctx = context.WithoutCancel(ctx)

	session, err := s.resolver.ResolveTenant(ctx, signature.Token)
	if errors.Is(err, ErrTenantNotFound) {
		s.logger.Info("Dropping event for unknown tenant", zap.String("event", envelope.Event))
		s.metrics.RecordWebhookEvent(kindLabel(envelope.Event), metrics.OutcomeUnknownTenant)
		return WebhookResult{Outcome: metrics.OutcomeUnknownTenant}, nil
	}
	if err != nil {
		s.logger.Error("Tenant lookup failed", zap.String("event", envelope.Event), zap.Error(err))
		s.metrics.RecordWebhookEvent(kindLabel(envelope.Event), metrics.OutcomeFailed)
		return WebhookResult{Outcome: metrics.OutcomeFailed}, nil
	}

	if !s.authenticator.Verify(rawBody, signature, session.WebhookSecret) {
		s.logger.Warn("Webhook signature verification failed",
			zap.String("sessionID", session.ID),
			zap.String("event", envelope.Event),
		)
		s.metrics.RecordSignatureFailure()
		s.metrics.RecordWebhookEvent(kindLabel(envelope.Event), metrics.OutcomeRejected)
		return WebhookResult{}, NewServiceError(constants.ErrCodeSignatureInvalid, ErrSignatureInvalid)
	}

	kind, ok := models.ParseEventKind(envelope.Event)
	if !ok || !s.dispatcher.Handles(kind) {
		s.logger.Info("Ignoring unknown event kind",
			zap.String("sessionID", session.ID),
			zap.String("event", envelope.Event),
		)
		s.metrics.RecordWebhookEvent(kindLabel(envelope.Event), metrics.OutcomeUnknownKind)
		return WebhookResult{Outcome: metrics.OutcomeUnknownKind, SessionID: session.ID}, nil
	}

	result := WebhookResult{Outcome: metrics.OutcomeProcessed, Kind: kind, SessionID: session.ID}
	err = s.dispatcher.Dispatch(ctx, session, Event{
		Kind:      kind,
		Name:      envelope.Event,
		Data:      envelope.Data,
		Timestamp: envelope.Time(),
	})
	if err != nil {
		s.logger.Error("Event handler failed",
			zap.String("sessionID", session.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		result.Outcome = metrics.OutcomeFailed
	}

	s.metrics.RecordWebhookEvent(string(kind), result.Outcome)
	return result, nil
}

// kindLabel keeps metric labels to the known kinds
func kindLabel(name string) string {
	if kind, ok := models.ParseEventKind(name); ok {
		return string(kind)
	}
	return "unknown"
}
