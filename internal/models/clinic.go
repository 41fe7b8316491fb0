package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Language preference of a clinic bot
const (
	LanguageEnglish   = "en"
	LanguageArabic    = "ar"
	LanguageBilingual = "bilingual"
)

// ClinicAccount is the tenant: one clinic with its session and configuration
type ClinicAccount struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Configuration *ClinicConfiguration `json:"configuration,omitempty" gorm:"foreignKey:ClinicAccountID;constraint:OnDelete:CASCADE"`
	Session       *TenantSession       `json:"-" gorm:"foreignKey:ClinicAccountID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate generates the account id
func (a *ClinicAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AfterCreate gives every new account its bot configuration
func (a *ClinicAccount) AfterCreate(tx *gorm.DB) error {
	if a.Configuration != nil {
		// created by the association save
		return nil
	}
	cfg := NewClinicConfiguration(a)
	if err := tx.Create(cfg).Error; err != nil {
		return err
	}
	a.Configuration = cfg
	return nil
}

// DayHours is the opening window of one weekday, "HH:MM" strings
type DayHours struct {
	Open  string `json:"open,omitempty"`
	Close string `json:"close,omitempty"`
}

// WorkingHours maps a lower-case English weekday name to its opening window
type WorkingHours map[string]DayHours

// ServiceItem is one entry of the clinic's service catalog
type ServiceItem struct {
	NameEn   string  `json:"nameEn"`
	NameAr   string  `json:"nameAr,omitempty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	Duration int     `json:"duration,omitempty"` // minutes
}

// KeywordRule is a clinic-defined trigger phrase with its replies
type KeywordRule struct {
	Keyword    string `json:"keyword"`
	ResponseEn string `json:"responseEn,omitempty"`
	ResponseAr string `json:"responseAr,omitempty"`
}

// ClinicConfiguration holds the per-tenant bot behaviour
type ClinicConfiguration struct {
	ID              string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ClinicAccountID string `json:"clinic_account_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	ClinicName      string `json:"clinic_name" gorm:"type:varchar(255)"`
	Language        string `json:"language" gorm:"type:varchar(16);default:'en'"`
	GreetingEn      string `json:"greeting_en" gorm:"type:text"`
	GreetingAr      string `json:"greeting_ar" gorm:"type:text"`
	AddressEn       string `json:"address_en" gorm:"type:text"`
	AddressAr       string `json:"address_ar" gorm:"type:text"`
	MapURL          string `json:"map_url" gorm:"type:varchar(512)"`
	Phone           string `json:"phone" gorm:"type:varchar(32)"`
	Currency        string `json:"currency" gorm:"type:varchar(8)"`

	WorkingHours datatypes.JSONType[WorkingHours]  `json:"working_hours"`
	Services     datatypes.JSONType[[]ServiceItem] `json:"services"`
	Keywords     datatypes.JSONType[[]KeywordRule] `json:"keywords"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClinicConfiguration returns the default configuration of a fresh account
func NewClinicConfiguration(a *ClinicAccount) *ClinicConfiguration {
	return &ClinicConfiguration{
		ID:              uuid.NewString(),
		ClinicAccountID: a.ID,
		ClinicName:      a.Name,
		Language:        LanguageEnglish,
		WorkingHours:    datatypes.NewJSONType(WorkingHours{}),
		Services:        datatypes.NewJSONType([]ServiceItem{}),
		Keywords:        datatypes.NewJSONType([]KeywordRule{}),
	}
}

// BeforeCreate generates the configuration id
func (c *ClinicConfiguration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Language == "" {
		c.Language = LanguageEnglish
	}
	return nil
}

// Schedule returns the working-hours schedule
func (c *ClinicConfiguration) Schedule() WorkingHours {
	return c.WorkingHours.Data()
}

// Catalog returns the service catalog
func (c *ClinicConfiguration) Catalog() []ServiceItem {
	return c.Services.Data()
}

// Rules returns the custom keyword rules in configured order
func (c *ClinicConfiguration) Rules() []KeywordRule {
	return c.Keywords.Data()
}
