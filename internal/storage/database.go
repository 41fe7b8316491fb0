package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"gorm.io/gorm"
)

var _ Store = (*DatabaseStore)(nil)

// DatabaseStore persists tenants and messages through GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store on an open GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Tenant operations

func (s *DatabaseStore) CreateClinic(ctx context.Context, clinic *models.ClinicAccount) error {
	return translate(s.db.WithContext(ctx).Create(clinic).Error)
}

func (s *DatabaseStore) CreateSession(ctx context.Context, session *models.TenantSession) error {
	return translate(s.db.WithContext(ctx).Omit("Clinic").Create(session).Error)
}

func (s *DatabaseStore) GetSessionBySecret(ctx context.Context, secret string) (*models.TenantSession, error) {
	var session models.TenantSession

	err := s.db.WithContext(ctx).
		Preload("Clinic.Configuration").
		Where("webhook_secret = ?", secret).
		First(&session).Error
	if err != nil {
		return nil, translate(err)
	}

	return &session, nil
}

// Message operations

func (s *DatabaseStore) CreateMessage(ctx context.Context, message *models.Message) error {
	return translate(s.db.WithContext(ctx).Create(message).Error)
}

func (s *DatabaseStore) FindOutbound(ctx context.Context, sessionID, correlationKey string) (*models.Message, error) {
	var message models.Message

	err := s.outbound(ctx, sessionID).
		Where("provider_message_id = ? OR reference = ?", correlationKey, correlationKey).
		First(&message).Error
	if err != nil {
		return nil, translate(err)
	}

	return &message, nil
}

func (s *DatabaseStore) FindPendingOutbound(ctx context.Context, sessionID, content string, limit int) ([]models.Message, error) {
	var messages []models.Message

	err := s.outbound(ctx, sessionID).
		Where("status = ? AND content = ?", models.StatusPending, content).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// TransitionStatus runs a single UPDATE ... WHERE status IN (...) so the match
// and the mutation cannot interleave with another transition
func (s *DatabaseStore) TransitionStatus(ctx context.Context, t StatusTransition) (bool, error) {
	if len(t.From) == 0 || (t.MessageID == "" && t.CorrelationKey == "") {
		return false, nil
	}

	result := transitionQuery(s.db.WithContext(ctx), t)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// transitionQuery builds and runs the conditional UPDATE on tx
func transitionQuery(tx *gorm.DB, t StatusTransition) *gorm.DB {
	updates := map[string]interface{}{"updated_at": t.At}
	if t.At.IsZero() {
		updates["updated_at"] = time.Now()
	}
	if t.To != "" {
		updates["status"] = t.To
	}
	if t.ProviderMessageID != "" {
		updates["provider_message_id"] = t.ProviderMessageID
	}

	query := outboundOf(tx, t.SessionID).Where("status IN ?", t.From)
	if t.MessageID != "" {
		query = query.Where("id = ?", t.MessageID)
	} else {
		query = query.Where("provider_message_id = ? OR reference = ?", t.CorrelationKey, t.CorrelationKey)
	}

	return query.Updates(updates)
}

func (s *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *DatabaseStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *DatabaseStore) outbound(ctx context.Context, sessionID string) *gorm.DB {
	return outboundOf(s.db.WithContext(ctx), sessionID)
}

func outboundOf(tx *gorm.DB, sessionID string) *gorm.DB {
	return tx.Model(&models.Message{}).
		Where("session_id = ? AND direction = ?", sessionID, models.DirectionOutbound)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
