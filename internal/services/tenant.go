package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/storage"
	"go.uber.org/zap"
)

// TenantResolver maps a presented webhook secret to its tenant session
type TenantResolver struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewTenantResolver creates a new tenant resolver
func NewTenantResolver(store storage.Store, m *metrics.Metrics, logger *zap.Logger) *TenantResolver {
	return &TenantResolver{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// ResolveTenant returns the session whose secret equals secret exactly, with
// its clinic configuration loaded
func (r *TenantResolver) ResolveTenant(ctx context.Context, secret string) (*models.TenantSession, error) {
	if secret == "" {
		r.metrics.RecordTenantLookup("miss")
		return nil, ErrTenantNotFound
	}

	session, err := r.store.GetSessionBySecret(ctx, secret)
	if errors.Is(err, storage.ErrNotFound) {
		r.metrics.RecordTenantLookup("miss")
		return nil, ErrTenantNotFound
	}
	if err != nil {
		r.metrics.RecordTenantLookup("error")
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}

	r.metrics.RecordTenantLookup("hit")
	if session.Configuration() == nil {
		r.logger.Warn("Tenant has no clinic configuration", zap.String("sessionID", session.ID))
	}

	return session, nil
}
