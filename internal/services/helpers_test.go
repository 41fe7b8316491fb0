package services_test

import (
	"context"
	"testing"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const (
	testSecret     = "tenant-secret-1"
	testCredential = "tenant-api-key-1"
)

func seedTenant(t *testing.T, store storage.Store, secret, credential string) *models.TenantSession {
	t.Helper()
	ctx := context.Background()

	clinic := &models.ClinicAccount{Name: "Smile Dental"}
	clinic.Configuration = &models.ClinicConfiguration{
		ClinicName: "Smile Dental",
		Language:   models.LanguageBilingual,
		Currency:   "USD",
		WorkingHours: datatypes.NewJSONType(models.WorkingHours{
			"monday": {Open: "09:00", Close: "17:00"},
		}),
		Services: datatypes.NewJSONType([]models.ServiceItem{
			{NameEn: "Cleaning", Price: 50, Duration: 30},
		}),
		Keywords: datatypes.NewJSONType([]models.KeywordRule{}),
	}
	require.NoError(t, store.CreateClinic(ctx, clinic))

	session := &models.TenantSession{
		ClinicAccountID: clinic.ID,
		APICredential:   credential,
		WebhookSecret:   secret,
		PhoneNumber:     "+15550000000",
	}
	require.NoError(t, store.CreateSession(ctx, session))

	found, err := store.GetSessionBySecret(ctx, secret)
	require.NoError(t, err)
	return found
}

func outboundRecord(t *testing.T, store storage.Store, session *models.TenantSession, content string, status models.DeliveryStatus, providerID string) *models.Message {
	t.Helper()
	msg := &models.Message{
		SessionID:         session.ID,
		Recipient:         "15551234567",
		Content:           content,
		Direction:         models.DirectionOutbound,
		Status:            status,
		ProviderMessageID: providerID,
		Reference:         "ref-" + content,
	}
	require.NoError(t, store.CreateMessage(context.Background(), msg))
	return msg
}

func reload(t *testing.T, store storage.Store, msg *models.Message) *models.Message {
	t.Helper()
	stored, err := store.FindOutbound(context.Background(), msg.SessionID, msg.Reference)
	require.NoError(t, err)
	return stored
}

func statusOf(t *testing.T, store storage.Store, msg *models.Message) models.DeliveryStatus {
	t.Helper()
	return reload(t, store, msg).Status
}
