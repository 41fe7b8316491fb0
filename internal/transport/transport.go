package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"go.uber.org/zap"
)

const (
	DriverGateway = "gateway"
	DriverTwilio  = "twilio"
)

var (
	ErrInvalidRecipient  = errors.New("INVALID_RECIPIENT")
	ErrInvalidCredential = errors.New("INVALID_CREDENTIAL")
	ErrSendFailed        = errors.New("SEND_FAILED")
)

// Message is one outbound text. Reference is echoed back by providers that
// support client references.
type Message struct {
	To        string
	Text      string
	Reference string
}

// Receipt is the provider acknowledgement of a send
type Receipt struct {
	MessageID string
	Reference string
}

// Transport delivers a message with the tenant credential given per call.
// Implementations keep no per-tenant state.
type Transport interface {
	Name() string
	Send(ctx context.Context, credential string, msg Message) (Receipt, error)
}

// New returns the transport selected by cfg.Driver
func New(cfg config.Transport, logger *zap.Logger) (Transport, error) {
	switch cfg.Driver {
	case DriverGateway, "":
		return NewGateway(cfg, logger), nil
	case DriverTwilio:
		return NewTwilio(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown transport driver %q", cfg.Driver)
	}
}
