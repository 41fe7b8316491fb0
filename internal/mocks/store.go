package mocks

import (
	"context"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/storage"
	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (m *Store) CreateClinic(ctx context.Context, clinic *models.ClinicAccount) error {
	args := m.Called(ctx, clinic)
	return args.Error(0)
}

func (m *Store) CreateSession(ctx context.Context, session *models.TenantSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *Store) GetSessionBySecret(ctx context.Context, secret string) (*models.TenantSession, error) {
	args := m.Called(ctx, secret)
	session, _ := args.Get(0).(*models.TenantSession)
	return session, args.Error(1)
}

func (m *Store) CreateMessage(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *Store) FindOutbound(ctx context.Context, sessionID, correlationKey string) (*models.Message, error) {
	args := m.Called(ctx, sessionID, correlationKey)
	message, _ := args.Get(0).(*models.Message)
	return message, args.Error(1)
}

func (m *Store) FindPendingOutbound(ctx context.Context, sessionID, content string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, sessionID, content, limit)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

func (m *Store) TransitionStatus(ctx context.Context, t storage.StatusTransition) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

func (m *Store) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Store) Close() error {
	args := m.Called()
	return args.Error(0)
}
