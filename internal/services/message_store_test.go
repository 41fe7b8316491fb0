package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/mocks"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/services"
	"github.com/Ananth-NQI/clinicbot-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMessageStore(store storage.Store) *services.MessageStore {
	return services.NewMessageStore(store, metrics.NewMetrics(), zap.NewNop())
}

func TestMessageStore_RecordInbound(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	session := seedTenant(t, store, testSecret, testCredential)
	messages := newMessageStore(store)

	ts := time.Unix(1700000000, 0)
	first, err := messages.RecordInbound(ctx, session, "15551234567", "hello", ts, models.LocaleEnglish)
	require.NoError(t, err)
	second, err := messages.RecordInbound(ctx, session, "15551234567", "hello", ts, models.LocaleEnglish)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.DirectionInbound, first.Direction)
	assert.Equal(t, models.StatusReceived, first.Status)
	assert.Equal(t, session.ID, first.SessionID)
	assert.True(t, ts.Equal(first.Timestamp))

	_, err = store.FindOutbound(ctx, session.ID, first.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMessageStore_RecordOutbound(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	session := seedTenant(t, store, testSecret, testCredential)
	messages := newMessageStore(store)

	msg, err := messages.RecordOutbound(ctx, session, "15551234567", "Welcome", models.LocaleEnglish)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, msg.Status)
	assert.Equal(t, models.DirectionOutbound, msg.Direction)
	assert.NotEmpty(t, msg.Reference)
}

func TestMessageStore_ApplyStatusUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("code 3 marks sent record delivered", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusSent, "wamid-1")

		result, err := newMessageStore(store).ApplyStatusUpdate(ctx, session, "wamid-1", 3)
		require.NoError(t, err)
		assert.Equal(t, services.StatusApplied, result)
		assert.Equal(t, models.StatusDelivered, statusOf(t, store, msg))
	})

	t.Run("unmapped code becomes unknown", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusPending, "wamid-1")

		result, err := newMessageStore(store).ApplyStatusUpdate(ctx, session, "wamid-1", 99)
		require.NoError(t, err)
		assert.Equal(t, services.StatusApplied, result)
		assert.Equal(t, models.StatusUnknown, statusOf(t, store, msg))
	})

	t.Run("same update twice is idempotent", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusSent, "wamid-1")
		messages := newMessageStore(store)

		_, err := messages.ApplyStatusUpdate(ctx, session, "wamid-1", 4)
		require.NoError(t, err)
		result, err := messages.ApplyStatusUpdate(ctx, session, "wamid-1", 4)
		require.NoError(t, err)

		assert.Equal(t, services.StatusIgnored, result)
		assert.Equal(t, models.StatusRead, statusOf(t, store, msg))
	})

	t.Run("late delivery never downgrades read", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusRead, "wamid-1")

		result, err := newMessageStore(store).ApplyStatusUpdate(ctx, session, "wamid-1", 3)
		require.NoError(t, err)
		assert.Equal(t, services.StatusIgnored, result)
		assert.Equal(t, models.StatusRead, statusOf(t, store, msg))
	})

	t.Run("error after delivery is ignored", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusDelivered, "wamid-1")

		result, err := newMessageStore(store).ApplyStatusUpdate(ctx, session, "wamid-1", 0)
		require.NoError(t, err)
		assert.Equal(t, services.StatusIgnored, result)
		assert.Equal(t, models.StatusDelivered, statusOf(t, store, msg))
	})

	t.Run("unknown key changes nothing", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusSent, "wamid-1")

		result, err := newMessageStore(store).ApplyStatusUpdate(ctx, session, "wamid-404", 3)
		require.NoError(t, err)
		assert.Equal(t, services.StatusMissing, result)
		assert.Equal(t, models.StatusSent, statusOf(t, store, msg))
	})

	t.Run("store failure is returned", func(t *testing.T) {
		store := &mocks.Store{}
		store.On("TransitionStatus", mock.Anything, mock.AnythingOfType("storage.StatusTransition")).
			Return(false, errors.New("connection reset"))

		session := &models.TenantSession{ID: "s1"}
		_, err := newMessageStore(store).ApplyStatusUpdate(ctx, session, "wamid-1", 3)
		assert.Error(t, err)
		store.AssertExpectations(t)
	})
}

func TestMessageStore_MarkSent(t *testing.T) {
	ctx := context.Background()

	t.Run("by reference attaches the provider id", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusPending, "")

		result, err := newMessageStore(store).MarkSent(ctx, session, services.SentReceipt{
			CorrelationKey: "wamid-9",
			Reference:      msg.Reference,
			Success:        true,
		})
		require.NoError(t, err)
		assert.Equal(t, services.StatusApplied, result)

		stored := reload(t, store, msg)
		assert.Equal(t, models.StatusSent, stored.Status)
		assert.Equal(t, "wamid-9", stored.ProviderMessageID)
	})

	t.Run("by provider id", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusPending, "wamid-1")

		result, err := newMessageStore(store).MarkSent(ctx, session, services.SentReceipt{
			CorrelationKey: "wamid-1",
			Success:        true,
		})
		require.NoError(t, err)
		assert.Equal(t, services.StatusApplied, result)
		assert.Equal(t, models.StatusSent, statusOf(t, store, msg))
	})

	t.Run("content fallback takes the oldest pending record", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		older := outboundRecord(t, store, session, "Welcome", models.StatusPending, "")
		time.Sleep(2 * time.Millisecond)
		newer := &models.Message{
			SessionID: session.ID,
			Content:   "Welcome",
			Direction: models.DirectionOutbound,
			Status:    models.StatusPending,
			Reference: "ref-newer",
		}
		require.NoError(t, store.CreateMessage(ctx, newer))

		result, err := newMessageStore(store).MarkSent(ctx, session, services.SentReceipt{
			CorrelationKey: "wamid-7",
			Content:        "Welcome",
			Success:        true,
		})
		require.NoError(t, err)
		assert.Equal(t, services.StatusApplied, result)

		stored := reload(t, store, older)
		assert.Equal(t, models.StatusSent, stored.Status)
		assert.Equal(t, "wamid-7", stored.ProviderMessageID)
		assert.Equal(t, models.StatusPending, statusOf(t, store, newer))
	})

	t.Run("failed send marks the record failed", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusPending, "")

		result, err := newMessageStore(store).MarkSent(ctx, session, services.SentReceipt{
			Reference: msg.Reference,
			Success:   false,
		})
		require.NoError(t, err)
		assert.Equal(t, services.StatusApplied, result)
		assert.Equal(t, models.StatusFailed, statusOf(t, store, msg))
	})

	t.Run("no match at all", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusPending, "")

		result, err := newMessageStore(store).MarkSent(ctx, session, services.SentReceipt{
			CorrelationKey: "wamid-x",
			Content:        "something else",
			Success:        true,
		})
		require.NoError(t, err)
		assert.Equal(t, services.StatusMissing, result)
		assert.Equal(t, models.StatusPending, statusOf(t, store, msg))
	})
}

func TestMessageStore_MarkDispatched(t *testing.T) {
	ctx := context.Background()

	t.Run("pending becomes sent with provider id", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusPending, "")

		require.NoError(t, newMessageStore(store).MarkDispatched(ctx, session, msg.ID, "wamid-1"))

		stored := reload(t, store, msg)
		assert.Equal(t, models.StatusSent, stored.Status)
		assert.Equal(t, "wamid-1", stored.ProviderMessageID)
	})

	t.Run("record already delivered keeps its status", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusDelivered, "")

		require.NoError(t, newMessageStore(store).MarkDispatched(ctx, session, msg.ID, "wamid-1"))

		stored := reload(t, store, msg)
		assert.Equal(t, models.StatusDelivered, stored.Status)
		assert.Equal(t, "wamid-1", stored.ProviderMessageID)
	})

	t.Run("failed marks pending record failed", func(t *testing.T) {
		store := storage.NewMemoryStore()
		session := seedTenant(t, store, testSecret, testCredential)
		msg := outboundRecord(t, store, session, "hi", models.StatusPending, "")

		require.NoError(t, newMessageStore(store).MarkFailed(ctx, session, msg.ID))
		assert.Equal(t, models.StatusFailed, statusOf(t, store, msg))
	})
}
