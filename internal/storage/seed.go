package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Seed provisions the configured clinics. Tenants whose webhook secret is
// already registered are left untouched, so seeding is safe on every start.
func Seed(ctx context.Context, store Store, tenants []config.SeedTenant, logger *zap.Logger) error {
	for _, tenant := range tenants {
		_, err := store.GetSessionBySecret(ctx, tenant.WebhookSecret)
		if err == nil {
			logger.Debug("Seed tenant already provisioned", zap.String("clinic", tenant.ClinicName))
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed %s: %w", tenant.ClinicName, err)
		}

		clinic := &models.ClinicAccount{
			Name:  tenant.ClinicName,
			Email: tenant.Email,
		}
		clinic.Configuration = seedConfiguration(tenant)

		if err := store.CreateClinic(ctx, clinic); err != nil {
			return fmt.Errorf("seed clinic %s: %w", tenant.ClinicName, err)
		}

		session := &models.TenantSession{
			ClinicAccountID:   clinic.ID,
			ProviderSessionID: tenant.ProviderSessionID,
			APICredential:     tenant.APICredential,
			WebhookSecret:     tenant.WebhookSecret,
			PhoneNumber:       tenant.PhoneNumber,
			Status:            models.SessionStatusConnected,
		}
		if err := store.CreateSession(ctx, session); err != nil {
			if errors.Is(err, ErrDuplicate) {
				logger.Warn("Seed session conflicts with an existing tenant", zap.String("clinic", tenant.ClinicName))
				continue
			}
			return fmt.Errorf("seed session %s: %w", tenant.ClinicName, err)
		}

		logger.Info("Seeded clinic tenant",
			zap.String("clinic", tenant.ClinicName),
			zap.String("clinicID", clinic.ID),
			zap.String("sessionID", session.ID),
		)
	}
	return nil
}

func seedConfiguration(tenant config.SeedTenant) *models.ClinicConfiguration {
	hours := tenant.WorkingHours
	if hours == nil {
		hours = models.WorkingHours{}
	}
	catalog := tenant.Services
	if catalog == nil {
		catalog = []models.ServiceItem{}
	}
	keywords := tenant.Keywords
	if keywords == nil {
		keywords = []models.KeywordRule{}
	}

	return &models.ClinicConfiguration{
		ClinicName:   tenant.ClinicName,
		Language:     tenant.Language,
		GreetingEn:   tenant.GreetingEn,
		GreetingAr:   tenant.GreetingAr,
		AddressEn:    tenant.AddressEn,
		AddressAr:    tenant.AddressAr,
		MapURL:       tenant.MapURL,
		Phone:        tenant.Phone,
		Currency:     tenant.Currency,
		WorkingHours: datatypes.NewJSONType(hours),
		Services:     datatypes.NewJSONType(catalog),
		Keywords:     datatypes.NewJSONType(keywords),
	}
}
