package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Direction of a message relative to the clinic
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Locale of a bot reply
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// Message is one inbound or outbound WhatsApp message of a tenant session
type Message struct {
	ID                string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID         string         `json:"session_id" gorm:"type:varchar(36);not null;index:idx_messages_session_content,priority:1"`
	Sender            string         `json:"sender" gorm:"type:varchar(64)"`
	Recipient         string         `json:"recipient" gorm:"type:varchar(64)"`
	Content           string         `json:"content" gorm:"type:text"`
	Direction         Direction      `json:"direction" gorm:"type:varchar(16);not null;index:idx_messages_session_content,priority:2"`
	Status            DeliveryStatus `json:"status" gorm:"type:varchar(16);not null;index:idx_messages_session_content,priority:3"`
	Locale            Locale         `json:"locale" gorm:"type:varchar(8)"`
	ProviderMessageID string         `json:"provider_message_id" gorm:"type:varchar(191);index"`
	Reference         string         `json:"reference" gorm:"type:varchar(36);index"`
	Timestamp         time.Time      `json:"timestamp"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// BeforeCreate assigns the id and the timestamp of the message
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return nil
}

// Matches reports whether key is the provider id or the client reference of m
func (m *Message) Matches(key string) bool {
	if key == "" {
		return false
	}
	return m.ProviderMessageID == key || m.Reference == key
}
