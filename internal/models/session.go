package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus is the provider connection state of a clinic's WhatsApp session
type SessionStatus string

const (
	SessionStatusPending      SessionStatus = "pending"
	SessionStatusConnecting   SessionStatus = "connecting"
	SessionStatusConnected    SessionStatus = "connected"
	SessionStatusDisconnected SessionStatus = "disconnected"
	SessionStatusError        SessionStatus = "error"
)

// TenantSession is one clinic's connection to the messaging provider
type TenantSession struct {
	ID                string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ClinicAccountID   string        `json:"clinic_account_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	ProviderSessionID string        `json:"provider_session_id" gorm:"type:varchar(191);index"`
	APICredential     string        `json:"api_credential" gorm:"type:varchar(255);not null"`
	WebhookSecret     string        `json:"webhook_secret" gorm:"type:varchar(191);uniqueIndex;not null"`
	PhoneNumber       string        `json:"phone_number" gorm:"type:varchar(20)"`
	Status            SessionStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Relations
	Clinic   *ClinicAccount `json:"clinic,omitempty" gorm:"foreignKey:ClinicAccountID"`
	Messages []Message      `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns an id and the initial connection status
func (s *TenantSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SessionStatusPending
	}
	return nil
}

// Configuration returns the clinic configuration joined onto the session, or nil
func (s *TenantSession) Configuration() *ClinicConfiguration {
	if s == nil || s.Clinic == nil {
		return nil
	}
	return s.Clinic.Configuration
}
