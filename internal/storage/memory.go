package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore holds all data in memory, for local runs and tests
type MemoryStore struct {
	clinics  map[string]*models.ClinicAccount
	sessions map[string]*models.TenantSession
	messages map[string]*models.Message

	// Mutexes for thread safety
	tenantMu  sync.RWMutex
	messageMu sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clinics:  make(map[string]*models.ClinicAccount),
		sessions: make(map[string]*models.TenantSession),
		messages: make(map[string]*models.Message),
	}
}

// Tenant operations

func (m *MemoryStore) CreateClinic(ctx context.Context, clinic *models.ClinicAccount) error {
	m.tenantMu.Lock()
	defer m.tenantMu.Unlock()

	if clinic.ID == "" {
		clinic.ID = uuid.NewString()
	}
	if _, exists := m.clinics[clinic.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	clinic.CreatedAt, clinic.UpdatedAt = now, now

	if clinic.Configuration == nil {
		clinic.Configuration = models.NewClinicConfiguration(clinic)
	}
	clinic.Configuration.ClinicAccountID = clinic.ID
	if clinic.Configuration.ID == "" {
		clinic.Configuration.ID = uuid.NewString()
	}

	m.clinics[clinic.ID] = clinic
	return nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, session *models.TenantSession) error {
	m.tenantMu.Lock()
	defer m.tenantMu.Unlock()

	if _, ok := m.clinics[session.ClinicAccountID]; !ok {
		return ErrNotFound
	}
	for _, existing := range m.sessions {
		if existing.WebhookSecret == session.WebhookSecret || existing.ClinicAccountID == session.ClinicAccountID {
			return ErrDuplicate
		}
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusPending
	}
	now := time.Now()
	session.CreatedAt, session.UpdatedAt = now, now

	stored := *session
	stored.Clinic = nil
	m.sessions[session.ID] = &stored
	return nil
}

func (m *MemoryStore) GetSessionBySecret(ctx context.Context, secret string) (*models.TenantSession, error) {
	m.tenantMu.RLock()
	defer m.tenantMu.RUnlock()

	for _, session := range m.sessions {
		if session.WebhookSecret != secret {
			continue
		}
		found := *session
		if clinic, ok := m.clinics[session.ClinicAccountID]; ok {
			c := *clinic
			if clinic.Configuration != nil {
				cfg := *clinic.Configuration
				c.Configuration = &cfg
			}
			found.Clinic = &c
		}
		return &found, nil
	}
	return nil, ErrNotFound
}

// Message operations

func (m *MemoryStore) CreateMessage(ctx context.Context, message *models.Message) error {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if _, exists := m.messages[message.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	if message.Timestamp.IsZero() {
		message.Timestamp = now
	}
	message.CreatedAt, message.UpdatedAt = now, now

	stored := *message
	m.messages[message.ID] = &stored
	return nil
}

func (m *MemoryStore) FindOutbound(ctx context.Context, sessionID, correlationKey string) (*models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	if msg := m.findOutboundLocked(sessionID, correlationKey); msg != nil {
		found := *msg
		return &found, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindPendingOutbound(ctx context.Context, sessionID, content string, limit int) ([]models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	var results []models.Message
	for _, msg := range m.messages {
		if msg.SessionID != sessionID || msg.Direction != models.DirectionOutbound {
			continue
		}
		if msg.Status != models.StatusPending || msg.Content != content {
			continue
		}
		results = append(results, *msg)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// TransitionStatus checks and sets under the message lock, so concurrent
// transitions of the same message serialize like a conditional UPDATE
func (m *MemoryStore) TransitionStatus(ctx context.Context, t StatusTransition) (bool, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	var msg *models.Message
	if t.MessageID != "" {
		if candidate, ok := m.messages[t.MessageID]; ok && candidate.SessionID == t.SessionID &&
			candidate.Direction == models.DirectionOutbound {
			msg = candidate
		}
	} else {
		msg = m.findOutboundLocked(t.SessionID, t.CorrelationKey)
	}
	if msg == nil || !containsStatus(t.From, msg.Status) {
		return false, nil
	}

	if t.To != "" {
		msg.Status = t.To
	}
	if t.ProviderMessageID != "" {
		msg.ProviderMessageID = t.ProviderMessageID
	}
	msg.UpdatedAt = t.At
	if msg.UpdatedAt.IsZero() {
		msg.UpdatedAt = time.Now()
	}
	return true, nil
}

func (m *MemoryStore) findOutboundLocked(sessionID, key string) *models.Message {
	for _, msg := range m.messages {
		if msg.SessionID == sessionID && msg.Direction == models.DirectionOutbound && msg.Matches(key) {
			return msg
		}
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func containsStatus(set []models.DeliveryStatus, s models.DeliveryStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
