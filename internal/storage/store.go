package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("RECORD_NOT_FOUND")
	ErrDuplicate = errors.New("RECORD_DUPLICATE")
)

// StatusTransition is an atomic conditional status update of one outbound message.
// The row is matched by MessageID when set, otherwise by CorrelationKey against
// the provider message id or the client reference; it is only updated while its
// current status is one of From. An empty To leaves the status as it is and
// only records ProviderMessageID.
type StatusTransition struct {
	SessionID         string
	MessageID         string
	CorrelationKey    string
	To                models.DeliveryStatus
	From              []models.DeliveryStatus
	ProviderMessageID string
	At                time.Time
}

// Store defines the interface for storage operations
type Store interface {
	// Tenant operations
	CreateClinic(ctx context.Context, clinic *models.ClinicAccount) error
	CreateSession(ctx context.Context, session *models.TenantSession) error
	GetSessionBySecret(ctx context.Context, secret string) (*models.TenantSession, error)

	// Message operations
	CreateMessage(ctx context.Context, message *models.Message) error
	FindOutbound(ctx context.Context, sessionID, correlationKey string) (*models.Message, error)
	FindPendingOutbound(ctx context.Context, sessionID, content string, limit int) ([]models.Message, error)
	TransitionStatus(ctx context.Context, t StatusTransition) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}
