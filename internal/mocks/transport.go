package mocks

import (
	"context"

	"github.com/Ananth-NQI/clinicbot-backend/internal/transport"
	"github.com/stretchr/testify/mock"
)

type Transport struct {
	mock.Mock
}

func (t *Transport) Name() string {
	args := t.Called()
	return args.String(0)
}

func (t *Transport) Send(ctx context.Context, credential string, msg transport.Message) (transport.Receipt, error) {
	args := t.Called(ctx, credential, msg)
	return args.Get(0).(transport.Receipt), args.Error(1)
}
